package pinplan

import (
	"fmt"
)

func ExampleVerifyAllIsolated() {
	res, _ := VerifyAllIsolated(4, AlwaysIsolated)

	fmt.Println("isolated:", res.Isolated)
	for _, s := range res.Splits {
		fmt.Println(s)
	}
	// Output:
	// isolated: true
	// split 0: A=[1 3] B=[2 4]
	// split 1: A=[1 2] B=[3 4]
}

func ExampleVerifyAllIsolated_violation() {
	// Pins 5 and 13 are shorted. Their zero-based indices 4 and 12 first
	// differ at bit 3, so the fourth split is the one that catches it.
	board, _ := NewBoard(NewPair(5, 13))
	res, _ := VerifyAllIsolated(16, board)

	failed, _ := res.FailedSplit()
	fmt.Println("isolated:", res.Isolated)
	fmt.Println("oracle calls:", board.Calls())
	fmt.Println("failing plane:", failed.Index)
	// Output:
	// isolated: false
	// oracle calls: 4
	// failing plane: 3
}

func ExamplePlanBatches() {
	batches, _ := PlanBatches(6)
	for _, b := range batches {
		fmt.Printf("batch %d: %v covers %d new pairs\n", b.Index, b.Pins, b.Covered)
	}
	// Output:
	// batch 0: [1 2 3] covers 9 new pairs
	// batch 1: [1 4] covers 4 new pairs
	// batch 2: [2 4 5] covers 2 new pairs
}

func ExampleSeparatingPlane() {
	plane, _ := SeparatingPlane(3, 7)
	fmt.Println(plane, BitPlaneSplit(8, plane))
	// Output:
	// 2 split 2: A=[1 2 3 4] B=[5 6 7 8]
}
