// Package gridhistory records, compresses, replays and reseeds the edit
// history of a mutable 2-D grid.
//
// # Changes and diffs
//
// A ValueChange is one position's transition from an old value to a new one.
// A Diff is an ordered batch of changes forming one logical edit. A diff is
// open while it is being recorded and becomes immutable once finalized:
//
//	d := gridhistory.NewDiff[int]()
//	_ = d.Add(gridhistory.Change(grid.Pt(1, 2), 0, 1))
//	_ = d.Add(gridhistory.Change(grid.Pt(1, 2), 1, 5))
//	d.Compress()        // one change: (1,2) 0 -> 5
//	d.FinalizeChanges() // no further Add
//
// # Views
//
// A View wraps a grid.Grid and records every write into the open diff at
// the head of its history. The cursor (CurrentDiffIndex) walks the history:
//
//	v := gridhistory.NewArrayView[int](80, 25)
//	_ = v.Set(grid.Pt(1, 2), 10)
//	_ = v.FinalizeCurrentDiff()
//	_ = v.RevertToPreviousDiff() // cursor -1, grid back to its baseline
//	_ = v.ApplyNextDiff()        // cursor 0, (1,2) == 10 again
//
// History is a single linear timeline: writes are rejected while the cursor
// is behind the head. SetHistory installs an externally stored history after
// checking that every position's old/new chain is consistent.
//
// A View is not safe for concurrent use.
package gridhistory
