package services

import (
	"github.com/charmbracelet/log"
	"github.com/liuzl/gocc"
)

// KeywordNormalizer rewrites a search keyword before it is sent to the station.
type KeywordNormalizer interface {
	Normalize(keyword string) string
}

type identityNormalizer struct{}

func (identityNormalizer) Normalize(keyword string) string { return keyword }

// openCCNormalizer converts Traditional Chinese keywords to Simplified Chinese.
type openCCNormalizer struct {
	converter *gocc.OpenCC
	logger    *log.Logger
}

// NewKeywordNormalizer returns the t2s normalizer when enabled, falling back to identity if OpenCC cannot initialize.
func NewKeywordNormalizer(enabled bool, logger *log.Logger) KeywordNormalizer {
	if !enabled {
		return identityNormalizer{}
	}

	converter, err := gocc.New("t2s")
	if err != nil {
		logger.Warn("OpenCC unavailable, keywords are sent unchanged", "err", err)
		return identityNormalizer{}
	}

	return &openCCNormalizer{converter: converter, logger: logger}
}

func (c *openCCNormalizer) Normalize(keyword string) string {
	out, err := c.converter.Convert(keyword)
	if err != nil {
		c.logger.Warn("failed to convert keyword", "keyword", keyword, "err", err)
		return keyword
	}
	return out
}
