package postimage

import (
	_ "embed"
	"fmt"
	"strings"
)

const (
	// DefaultStyle is applied when a Request has no Style.
	DefaultStyle = "professional, clean, LinkedIn-style graphic"

	maxHeadlineWords      = 10
	maxTopicHeadlineWords = 8
)

//go:embed templates/brand_template.txt
var defaultTemplate string

// DefaultTemplate returns the embedded brand layout: purple-to-teal gradient,
// logo top-left, a 5-10 word headline and topic imagery.
func DefaultTemplate() string {
	return strings.TrimSpace(defaultTemplate)
}

// DeriveHeadline returns the on-image headline: at most 10 words of heroCopy,
// or the first 8 words of topic when heroCopy is blank.
func DeriveHeadline(heroCopy, topic string) string {
	if words := strings.Fields(heroCopy); len(words) > 0 {
		return strings.Join(words[:min(len(words), maxHeadlineWords)], " ")
	}
	words := strings.Fields(topic)
	return strings.Join(words[:min(len(words), maxTopicHeadlineWords)], " ")
}

// SelectTemplate returns description when it is non-blank, else DefaultTemplate.
func SelectTemplate(description string) string {
	if s := strings.TrimSpace(description); s != "" {
		return s
	}
	return DefaultTemplate()
}

// BuildPrompt assembles the single instruction string sent to the model.
func BuildPrompt(template, topic, headline string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create a new image following this exact template: %s ", template))
	sb.WriteString(fmt.Sprintf("Topic/theme: %s. ", topic))
	sb.WriteString(fmt.Sprintf("Display this headline text (bold, white, left side): \"%s\". ", headline))
	sb.WriteString("Include relevant imagery on the right or center that visually represents the topic, " +
		"e.g., for talent acquisition: professionals, teams, hiring; for workforce/skills: learning, growth, people; " +
		"for IT recruitment: tech, digital. ")
	sb.WriteString("No other text. Match the reference images' layout, colors, and Tekspot branding. " +
		"Suitable for LinkedIn company post.")
	return sb.String()
}
