package messaging

import (
	"strconv"
)

const roomIdSeparator = ":"

// RoomId derives the conversation id for a pair of participants. The two ids
// are sorted lexicographically before joining, so both participants derive
// the same id regardless of who initiates.
func RoomId(a, b int) string {
	first, second := strconv.Itoa(a), strconv.Itoa(b)
	if second < first {
		first, second = second, first
	}
	return first + roomIdSeparator + second
}
