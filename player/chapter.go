package player

import (
	"strconv"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ChapterAt returns the chapter playing at pos. Chapters must be sorted by Time.
func ChapterAt(chapters []Chapter, pos float64) (Chapter, int, bool) {
	idx := -1
	for i, c := range chapters {
		if c.Time > pos {
			break
		}
		idx = i
	}
	if idx < 0 {
		return Chapter{}, -1, false
	}
	return chapters[idx], idx, true
}

// ChapterCrossing returns the title of the chapter at to, if it differs from the one at from.
// An empty string means no crossing or no chapter information.
func ChapterCrossing(chapters mo.Option[[]Chapter], from, to float64) string {
	list, ok := chapters.Get()
	if !ok || len(list) == 0 {
		return ""
	}

	_, a, _ := ChapterAt(list, from)
	c, b, ok := ChapterAt(list, to)
	if !ok || a == b {
		return ""
	}
	return lo.Ternary(c.Title != "", c.Title, "Chapter "+strconv.Itoa(b+1))
}
