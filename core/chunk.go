package core

// SplitReply partitions text into consecutive chunks of at most limit runes.
// Every chunk except the last holds exactly limit runes and concatenating
// the chunks yields text unchanged. Splitting ignores word boundaries; the
// only goal is to stay under the platform's message size cap.
//
// Empty text yields a single empty chunk. A non-positive limit disables
// splitting and yields text as its only chunk.
func SplitReply(text string, limit int) []string {
	if text == "" || limit <= 0 {
		return []string{text}
	}

	var chunks []string
	start, count := 0, 0
	for i := range text {
		if count == limit {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	return append(chunks, text[start:])
}
