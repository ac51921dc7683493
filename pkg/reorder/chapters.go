package reorder

// ChapterQueue correlates "chapter requested at input frame X" events with
// "keyframe produced" output events. The two happen on different frames
// and in different orders, but chapters are requested and keyframes are
// produced in the same relative order, so the correlation is purely
// positional: first pending chapter goes to the first keyframe.
type ChapterQueue struct {
	pending []int64
}

// Enqueue appends a pending chapter marker for the frame with the given
// sequence number.
func (q *ChapterQueue) Enqueue(sequence int64) {
	q.pending = append(q.pending, sequence)
}

// DequeueForKeyframe pops the oldest pending chapter when a keyframe
// packet is produced. The second return is false when no chapter is
// pending.
func (q *ChapterQueue) DequeueForKeyframe() (int64, bool) {
	if len(q.pending) == 0 {
		return 0, false
	}
	seq := q.pending[0]
	q.pending = q.pending[1:]
	return seq, true
}

// Len returns the number of chapters still awaiting a keyframe.
func (q *ChapterQueue) Len() int {
	return len(q.pending)
}
