// Package trace implements traceability analysis over the generated
// document graph: link validation, principle conflicts, coverage gaps,
// version drift, dependency cycles, and orphaned principles.
package trace

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bpkit/bpkit/internal/markdown"
)

// LinkType classifies a traceability edge by the layers it connects.
type LinkType string

const (
	PitchToStrategic   LinkType = "pitch_to_strategic"
	StrategicToPitch   LinkType = "strategic_to_pitch"
	StrategicToFeature LinkType = "strategic_to_feature"
	FeatureToStrategic LinkType = "feature_to_strategic"
	FeatureToPitch     LinkType = "feature_to_pitch"
)

// Link is one resolved traceability reference between documents.
type Link struct {
	SourceFile    string
	SourceLine    int
	TargetFile    string
	TargetSection string
	Text          string
	Type          LinkType
}

// ParseLinkURL builds a Link from a markdown link found in sourceFile.
// Relative targets resolve against the source file's directory; a bare
// "#anchor" target points back into the source file itself.
func ParseLinkURL(sourceFile string, ml markdown.Link) Link {
	targetFile := sourceFile
	if ml.File != "" {
		targetFile = filepath.Join(filepath.Dir(sourceFile), filepath.FromSlash(path.Clean(ml.File)))
	}
	return Link{
		SourceFile:    sourceFile,
		SourceLine:    ml.Line,
		TargetFile:    targetFile,
		TargetSection: ml.Anchor,
		Text:          ml.Text,
		Type:          inferLinkType(sourceFile, targetFile),
	}
}

// ExtractLinks reads every traceability link out of a document body.
func ExtractLinks(sourceFile string, body []byte) []Link {
	var links []Link
	for _, ml := range markdown.ExtractLinks(body) {
		links = append(links, ParseLinkURL(sourceFile, ml))
	}
	return links
}

func inferLinkType(sourceFile, targetFile string) LinkType {
	src := filepath.ToSlash(sourceFile)
	dst := filepath.ToSlash(targetFile)

	srcStrategic := strings.Contains(src, "/memory/") || strings.Contains(src, "constitution.md")
	srcFeature := strings.Contains(src, "/features/")
	srcDeck := strings.Contains(src, "/deck/") || strings.Contains(src, "pitch-deck.md")

	dstStrategic := strings.Contains(dst, "/memory/") || strings.Contains(dst, "constitution.md")
	dstFeature := strings.Contains(dst, "/features/")
	dstDeck := strings.Contains(dst, "/deck/") || strings.Contains(dst, "pitch-deck.md")

	switch {
	case srcDeck && dstStrategic:
		return PitchToStrategic
	case srcStrategic && dstDeck:
		return StrategicToPitch
	case srcStrategic && dstFeature:
		return StrategicToFeature
	case srcFeature && dstStrategic:
		return FeatureToStrategic
	case srcFeature && dstDeck:
		return FeatureToPitch
	default:
		return FeatureToStrategic
	}
}
