package tokenizer

import (
	"errors"
	"unicode/utf8"

	"github.com/mvoronov/treescan/internal/types"
	"github.com/mvoronov/treescan/internal/utils"
)

// CountResult captures the outcome of counting one piece of content.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for the provided data. Binary or invalid-UTF-8
// content is reported as not counted rather than as an error.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errors.New("nil tokenizer counter")
	}
	if len(data) > 0 && (utils.IsBinary(data) || !utf8.Valid(data)) {
		return CountResult{Counted: false}, nil
	}
	tokens, countError := counter.CountString(string(data))
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountTree sums the token counts of every file in the scanned tree. Files
// whose content cannot be counted contribute zero.
func CountTree(counter Counter, node *types.DirectoryInfo) (int, error) {
	if counter == nil {
		return 0, errors.New("nil tokenizer counter")
	}
	if node == nil {
		return 0, nil
	}

	totalTokens := 0
	for _, fileInfo := range node.Files {
		result, countError := CountBytes(counter, []byte(fileInfo.Content))
		if countError != nil {
			return 0, countError
		}
		if result.Counted {
			totalTokens += result.Tokens
		}
	}
	for _, childNode := range node.Directories {
		childTokens, childError := CountTree(counter, childNode)
		if childError != nil {
			return 0, childError
		}
		totalTokens += childTokens
	}
	return totalTokens, nil
}
