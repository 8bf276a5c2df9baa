package testutil

// WithLetters writes "a", "b", "c"... along row 0, one finalized diff per
// letter, leaving the cursor at the head.
func (b *Builder) WithLetters(n int) *Builder {
	for x := range n {
		b.WithDiff(Cell(x, 0, string(rune('a'+x))))
	}
	return b
}
