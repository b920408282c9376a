package classifier

// MaxSequenceLength is the fixed input length of the risk model.
const MaxSequenceLength = 100

// PadPost returns a copy of seq of exactly maxLen ids. Longer sequences are cut
// at the end and shorter ones are zero-padded at the end, so the leading
// content of the message is always kept.
func PadPost(seq []int32, maxLen int) []int32 {
	out := make([]int32, maxLen)
	copy(out, seq)
	return out
}
