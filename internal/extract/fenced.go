package extract

import (
	"regexp"
	"strings"

	"github.com/roach88/deckcheck/internal/repair"
)

var (
	jsonFenceRegex    = regexp.MustCompile(`(?s)` + "```json" + `\s*(.*?)` + "```")
	genericFenceRegex = regexp.MustCompile(`(?s)` + "```" + `[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)` + "```")
)

// fencedBlocks returns the bodies of all ```json blocks, or, when there are
// none, of all ``` blocks whose trimmed body starts with "{" or "[".
func fencedBlocks(text string) []string {
	var blocks []string
	for _, m := range jsonFenceRegex.FindAllStringSubmatch(text, -1) {
		blocks = append(blocks, m[1])
	}
	if len(blocks) > 0 {
		return blocks
	}

	for _, m := range genericFenceRegex.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
			blocks = append(blocks, body)
		}
	}
	return blocks
}

func scanFenced(text string, res *Result) {
	for i, block := range fencedBlocks(text) {
		if res.Complete() {
			return
		}
		obj, err := repair.ParseObject(block)
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Source: SourceFenced, Block: i + 1, Reason: err.Error()})
			continue
		}
		if !res.offer(obj, SourceFenced) {
			res.Skipped = append(res.Skipped, Skip{Source: SourceFenced, Block: i + 1, Reason: "unclassified or duplicate document"})
		}
	}
}
