// Package keyword provides full-text lookup over item identifiers.
package keyword

import (
	"strings"

	"github.com/hyperjump/memefeed/pkg/utils"
)

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	Index int
	Score float64
}

// itemDoc is the document indexed for each item.
type itemDoc struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

var nameSeparators = strings.NewReplacer("_", " ", "-", " ", ".", " ")

// DocumentName turns an identifier such as "memes/distracted_boyfriend-2.jpg" into the
// searchable text "distracted boyfriend 2 jpg".
func DocumentName(identifier string) string {
	return strings.Join(strings.Fields(nameSeparators.Replace(utils.DisplayName(identifier))), " ")
}
