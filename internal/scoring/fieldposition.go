package scoring

import "github.com/fortuna/drivescore/internal/store"

// AdjustFieldPosition credits each drive with the swing in the opponent's
// expected points caused by where it ended, relative to where an average
// drive from the same starting bucket leaves the opponent:
//
//  1. mean next-drive start per starting bucket (expected entry from start)
//  2. mean next-drive start per ending bucket (expected entry from end)
//  3. bucket both means
//  4. mean expected points per starting bucket
//  5. field_position_points = lookup(entry from start) - lookup(entry from end)
//  6. drive_score = expected_points + field_position_points
//
// Empty buckets propagate as undefined. RelativeDriveScore is the drive
// score less the mean drive score of its starting bucket.
func AdjustFieldPosition(drives []store.Drive) []store.Drive {
	out := clone(drives)

	startBin := func(d store.Drive) string { return d.StartYardLineBin }
	endBin := func(d store.Drive) string { return d.EndYardLineBin }
	nextStart := func(d store.Drive) store.NullFloat { return d.NextStartYardLine }

	entryFromStart := binMeans(out, startBin, nextStart)
	entryFromEnd := binMeans(out, endBin, nextStart)
	bucketValue := binMeans(out, startBin, func(d store.Drive) store.NullFloat { return d.ExpectedPoints })

	for i := range out {
		d := &out[i]
		d.StartOppExpectedBin = Bin(entryFromStart.lookup(d.StartYardLineBin, ""))
		d.EndOppExpectedBin = Bin(entryFromEnd.lookup(d.EndYardLineBin, ""))

		d.ExpectedPointsOppFromStart = bucketValue.lookup(d.StartOppExpectedBin, "")
		d.ExpectedPointsOppFromEnd = bucketValue.lookup(d.EndOppExpectedBin, "")
		d.FieldPositionPoints = d.ExpectedPointsOppFromStart.Sub(d.ExpectedPointsOppFromEnd)
		d.DriveScore = d.ExpectedPoints.Add(d.FieldPositionPoints)
	}

	bucketScore := binMeans(out, startBin, func(d store.Drive) store.NullFloat { return d.DriveScore })
	for i := range out {
		d := &out[i]
		d.RelativeDriveScore = d.DriveScore.Sub(bucketScore.lookup(d.StartYardLineBin, ""))
	}

	return out
}
