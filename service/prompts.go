package service

import (
	"fmt"
	"strings"

	"github.com/poiesic/secondbrain/core"
)

// promptKey selects a system prompt. youtube is tracked separately from
// CardTypeURL because video summaries get their own wording.
type promptKey struct {
	cardType core.CardType
	youtube  bool
	summary  core.SummaryType
}

var genericSystemPrompts = map[core.SummaryType]string{
	core.SummaryConcise:        "You are a helpful assistant that creates concise summaries. Keep the summary brief and to the point, focusing only on the most important information.",
	core.SummaryDetailed:       "You are a helpful assistant that creates detailed summaries. Include all important details, explanations, and context in your summary.",
	core.SummaryBulletPoints:   "You are a helpful assistant that creates bullet point summaries. Format your summary as a list of bullet points, each covering a key point from the content.",
	core.SummaryQuestionAnswer: "You are a helpful assistant that creates Q&A summaries. Format your summary as a series of questions and answers that cover the key points from the content.",
	core.SummaryKeyFacts:       "You are a helpful assistant that extracts key facts. Identify and list the most important facts from the content.",
}

var cardSystemPrompts = map[promptKey]string{
	{core.CardTypeURL, false, core.SummaryConcise}: "You are a helpful assistant that creates concise summaries of web content. " +
		"Extract the most important information from the web page, focusing on the main points. " +
		"Ignore advertisements, navigation elements, and other non-essential content. " +
		"Keep the summary brief and to the point, around 3-5 sentences.",
	{core.CardTypeURL, false, core.SummaryDetailed}: "You are a helpful assistant that creates detailed summaries of web content. " +
		"Provide a comprehensive overview of the web page, including all important sections, " +
		"key arguments, data points, and conclusions. Organize the information logically " +
		"and maintain the original structure where appropriate. Include relevant details " +
		"while still being concise.",
	{core.CardTypeURL, false, core.SummaryBulletPoints}: "You are a helpful assistant that creates bullet point summaries of web content. " +
		"Extract the key points from the web page and present them as a clear, organized list. " +
		"Each bullet point should represent a distinct idea or piece of information. " +
		"Use hierarchical structure if appropriate, with main points and sub-points. " +
		"Focus on facts, arguments, and conclusions.",
	{core.CardTypeURL, false, core.SummaryQuestionAnswer}: "You are a helpful assistant that creates question and answer summaries of web content. " +
		"Identify the most important questions that the web page addresses, and provide " +
		"clear, concise answers based on the content. Format as Q&A pairs. " +
		"Cover the main topics and key information. If the content doesn't explicitly " +
		"frame information as questions, create appropriate questions that would be " +
		"answered by the main points in the content.",
	{core.CardTypeURL, false, core.SummaryKeyFacts}: "You are a helpful assistant that extracts key facts from web content. " +
		"Identify and list the most important factual information from the web page. " +
		"Focus on verifiable data, statistics, dates, names, and concrete information. " +
		"Avoid opinions, interpretations, or subjective statements unless they are " +
		"central to the content's purpose. Present facts in a clear, organized manner.",

	{core.CardTypeURL, true, core.SummaryConcise}: "You are a helpful assistant that creates concise summaries of YouTube videos. " +
		"Focus on the main topic, key points, and conclusions of the video. " +
		"If a transcript is available, use it to extract the most important information. " +
		"Include any significant demonstrations, examples, or insights shared in the video. " +
		"Keep the summary brief and to the point, around 3-5 sentences. " +
		"Mention the creator's name if available.",
	{core.CardTypeURL, true, core.SummaryDetailed}: "You are a helpful assistant that creates detailed summaries of YouTube videos. " +
		"Provide a comprehensive overview of the video content, including all important sections, " +
		"key points, demonstrations, and conclusions. If a transcript is available, use it to " +
		"extract detailed information with timestamps when possible. Include information about " +
		"the creator, their expertise, and the context of the video. Organize the information " +
		"logically, following the structure of the video.",
	{core.CardTypeURL, true, core.SummaryBulletPoints}: "You are a helpful assistant that creates bullet point summaries of YouTube videos. " +
		"Extract the key points from the video and present them as a clear, organized list. " +
		"If a transcript is available, use it to identify the most important information. " +
		"Include timestamps when possible to help the user navigate to specific parts of the video. " +
		"Focus on actionable insights, key facts, and main arguments.",
	{core.CardTypeURL, true, core.SummaryQuestionAnswer}: "You are a helpful assistant that creates question and answer summaries of YouTube videos. " +
		"Identify the most important questions that the video addresses, and provide clear, concise " +
		"answers based on the content. If a transcript is available, use it to extract accurate information. " +
		"Format as Q&A pairs, organized by the video's main topics. Include timestamps when possible " +
		"to help the user navigate to the relevant parts of the video.",
	{core.CardTypeURL, true, core.SummaryKeyFacts}: "You are a helpful assistant that extracts key facts from YouTube videos. " +
		"Identify and list the most important factual information from the video. " +
		"If a transcript is available, use it to extract accurate information with timestamps when possible. " +
		"Focus on verifiable data, statistics, definitions, steps in tutorials, and concrete information. " +
		"Present facts in a clear, organized manner, grouped by topic if appropriate.",

	{core.CardTypePDF, false, core.SummaryConcise}: "You are a helpful assistant that creates concise summaries of PDF documents. " +
		"Extract the most important information from the document, focusing on the main thesis, " +
		"key arguments, and conclusions. Maintain the logical flow of the original document " +
		"while condensing it significantly. Keep the summary brief and to the point, " +
		"around 3-5 sentences per major section.",
	{core.CardTypePDF, false, core.SummaryDetailed}: "You are a helpful assistant that creates detailed summaries of PDF documents. " +
		"Provide a comprehensive overview of the document, including all important sections, " +
		"key arguments, data points, and conclusions. Preserve the document's structure " +
		"and organization. Include relevant details from figures, tables, and references " +
		"if they are central to understanding the content.",
	{core.CardTypePDF, false, core.SummaryBulletPoints}: "You are a helpful assistant that creates bullet point summaries of PDF documents. " +
		"Extract the key points from each section of the document and present them as a " +
		"clear, organized list. Use hierarchical structure to reflect the document's organization, " +
		"with main points and sub-points. Include important data from tables and figures " +
		"where relevant.",
	{core.CardTypePDF, false, core.SummaryQuestionAnswer}: "You are a helpful assistant that creates question and answer summaries of PDF documents. " +
		"Identify the most important questions that the document addresses, and provide " +
		"clear, concise answers based on the content. Format as Q&A pairs, organized by " +
		"the document's main sections.",
	{core.CardTypePDF, false, core.SummaryKeyFacts}: "You are a helpful assistant that extracts key facts from PDF documents. " +
		"Identify and list the most important factual information from the document. " +
		"Focus on verifiable data, statistics, dates, names, and concrete information. " +
		"Pay special attention to information presented in tables, figures, and highlighted " +
		"sections. Organize facts by the document's sections for clarity.",

	{core.CardTypeAudio, false, core.SummaryConcise}: "You are a helpful assistant that creates concise summaries of audio transcriptions. " +
		"Extract the most important information from the conversation or monologue, " +
		"focusing on main topics, key points, and conclusions. Ignore filler words, " +
		"repetitions, and tangential remarks. Keep the summary brief and to the point, " +
		"around 3-5 sentences.",
	{core.CardTypeAudio, false, core.SummaryDetailed}: "You are a helpful assistant that creates detailed summaries of audio transcriptions. " +
		"Provide a comprehensive overview of the conversation or monologue, including all " +
		"important topics, key points, arguments, and conclusions. Maintain the logical flow " +
		"of the discussion. Include speaker identification if multiple speakers are present.",
	{core.CardTypeAudio, false, core.SummaryBulletPoints}: "You are a helpful assistant that creates bullet point summaries of audio transcriptions. " +
		"Extract the key points from the conversation or monologue and present them as a " +
		"clear, organized list. Each bullet point should represent a distinct topic or " +
		"important statement. Include speaker attribution if multiple speakers are present.",
	{core.CardTypeAudio, false, core.SummaryQuestionAnswer}: "You are a helpful assistant that creates question and answer summaries of audio transcriptions. " +
		"Identify the most important questions that are addressed in the audio, and provide " +
		"clear, concise answers based on the content. Format as Q&A pairs. " +
		"Include speaker attribution if multiple speakers are present.",
	{core.CardTypeAudio, false, core.SummaryKeyFacts}: "You are a helpful assistant that extracts key facts from audio transcriptions. " +
		"Identify and list the most important factual information from the conversation or monologue. " +
		"Focus on verifiable data, statistics, dates, names, and concrete information. " +
		"Include speaker attribution if multiple speakers are present.",

	{core.CardTypeNote, false, core.SummaryConcise}: "You are a helpful assistant that creates concise summaries of notes. " +
		"Extract the most important information from the notes, focusing on main ideas " +
		"and key points. Maintain the logical structure of the original notes while " +
		"condensing significantly. Keep the summary brief and to the point.",
	{core.CardTypeNote, false, core.SummaryDetailed}: "You are a helpful assistant that creates detailed summaries of notes. " +
		"Provide a comprehensive overview of the notes, including all important sections, " +
		"key points, and any conclusions. Preserve the original structure and organization. " +
		"Include relevant details and examples that support the main ideas.",
	{core.CardTypeNote, false, core.SummaryBulletPoints}: "You are a helpful assistant that creates bullet point summaries of notes. " +
		"Extract the key points from the notes and present them as a clear, organized list. " +
		"Use hierarchical structure to reflect the notes' organization, with main points " +
		"and sub-points.",
	{core.CardTypeNote, false, core.SummaryQuestionAnswer}: "You are a helpful assistant that creates question and answer summaries of notes. " +
		"Identify the most important topics in the notes, and frame them as questions with " +
		"clear, concise answers based on the content. Format as Q&A pairs, organized by " +
		"the notes' main sections.",
	{core.CardTypeNote, false, core.SummaryKeyFacts}: "You are a helpful assistant that extracts key facts from notes. " +
		"Identify and list the most important factual information from the notes. " +
		"Focus on verifiable data, definitions, concepts, and concrete information. " +
		"Organize facts by topic for clarity.",

	{core.CardTypeSearch, false, core.SummaryConcise}: "You are a helpful assistant that creates concise summaries of search results. " +
		"Extract the most important information related to the search query, focusing on " +
		"direct answers and key points. Keep the summary brief and to the point, " +
		"around 3-5 sentences. Prioritize information that directly addresses the search query.",
	{core.CardTypeSearch, false, core.SummaryDetailed}: "You are a helpful assistant that creates detailed summaries of search results. " +
		"Provide a comprehensive overview of the information related to the search query, " +
		"including different perspectives, key data points, and relevant context. " +
		"Organize the information logically, grouping related points together.",
	{core.CardTypeSearch, false, core.SummaryBulletPoints}: "You are a helpful assistant that creates bullet point summaries of search results. " +
		"Extract the key points related to the search query and present them as a clear, " +
		"organized list. Each bullet point should represent a distinct piece of information. " +
		"Prioritize information that directly addresses the search query.",
	{core.CardTypeSearch, false, core.SummaryQuestionAnswer}: "You are a helpful assistant that creates question and answer summaries of search results. " +
		"Start with the main search query as the primary question. Then identify important " +
		"sub-questions related to the topic, and provide clear, concise answers based on " +
		"the search results. Format as Q&A pairs.",
	{core.CardTypeSearch, false, core.SummaryKeyFacts}: "You are a helpful assistant that extracts key facts from search results. " +
		"Identify and list the most important factual information related to the search query. " +
		"Focus on verifiable data, statistics, dates, names, and concrete information. " +
		"Present facts in a clear, organized manner.",
}

// SystemPrompt returns the summary system prompt for a card type. A zero
// cardType selects the generic prompt for the summary type.
func SystemPrompt(cardType core.CardType, youtube bool, summary core.SummaryType) string {
	if youtube {
		cardType = core.CardTypeURL
	}
	if p, ok := cardSystemPrompts[promptKey{cardType, youtube, summary}]; ok {
		return p
	}
	if p, ok := genericSystemPrompts[summary]; ok {
		return p
	}
	return genericSystemPrompts[core.SummaryConcise]
}

func summaryUserPrompt(summary core.SummaryType, language string) string {
	switch summary {
	case core.SummaryDetailed:
		return fmt.Sprintf("Create a detailed summary of the following content in %s:", language)
	case core.SummaryBulletPoints:
		return fmt.Sprintf("Summarize the following content as bullet points in %s:", language)
	case core.SummaryQuestionAnswer:
		return fmt.Sprintf("Create a Q&A summary of the following content in %s:", language)
	case core.SummaryKeyFacts:
		return fmt.Sprintf("Extract the key facts from the following content in %s:", language)
	default:
		return fmt.Sprintf("Create a concise summary of the following content in %s:", language)
	}
}

// summaryRequestPrompt joins the user prompt, optional custom instructions and the content.
func summaryRequestPrompt(summary core.SummaryType, language, customInstructions, content string) string {
	var b strings.Builder
	b.WriteString(summaryUserPrompt(summary, language))
	if strings.TrimSpace(customInstructions) != "" {
		b.WriteString("\n\nAdditional instructions: ")
		b.WriteString(customInstructions)
	}
	b.WriteString("\n\n")
	b.WriteString(content)
	return b.String()
}

const (
	tagSystemPrompt = "You are a helpful assistant that generates relevant tags for content. " +
		"Generate tags that accurately represent the main topics, concepts, and entities in the content."

	titleSystemPrompt = "You are a helpful assistant that generates concise, descriptive titles for content. " +
		"Generate a title that accurately represents the main topic or theme of the content."

	imageSystemPrompt = "You are a helpful assistant that extracts text from images. " +
		"Extract all visible text from the image, maintaining the original formatting as much as possible."
)

func tagUserPrompt(content, language string, maxTags int) string {
	return fmt.Sprintf("Generate up to %d tags for the following content in %s. "+
		"Return only the tags as a comma-separated list, without any additional text or explanation:\n\n%s",
		maxTags, language, content)
}

func titleUserPrompt(content, language string) string {
	return fmt.Sprintf("Generate a title for the following content in %s. "+
		"The title should be concise (maximum %d characters) and descriptive. "+
		"Return only the title, without any additional text or explanation:\n\n%s",
		language, MaxTitleLength, content)
}

func imageUserPrompt(language string) string {
	return fmt.Sprintf("Extract all text from this image in %s.", language)
}

// IsYouTubeContent reports whether content carries the markers written by
// the YouTube extractor.
func IsYouTubeContent(content string) bool {
	return strings.Contains(content, "YouTube Video:") &&
		(strings.Contains(content, "Video ID:") || strings.Contains(content, "Transcript:"))
}
