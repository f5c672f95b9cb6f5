// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package content

import (
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/service"
)

type promptKey struct {
	category core.ContentCategory
	summary  core.SummaryType
}

// systemGuidance is appended to the base system prompt.
var systemGuidance = map[promptKey]string{
	{core.CategoryAcademic, core.SummaryConcise}:        "For academic content, focus on the research question, methodology, key findings, and implications. Use formal language and maintain academic rigor.",
	{core.CategoryAcademic, core.SummaryDetailed}:       "For academic content, structure your summary to include the research question, theoretical framework, methodology, results, discussion, and implications. Maintain academic terminology and cite key references if mentioned.",
	{core.CategoryAcademic, core.SummaryBulletPoints}:   "For academic content, organize bullet points by research components: research question, methodology, key findings, limitations, and implications. Use precise academic terminology.",
	{core.CategoryAcademic, core.SummaryQuestionAnswer}: "For academic content, structure questions around: What was the research question? What methodology was used? What were the key findings? What are the implications? What limitations were acknowledged?",
	{core.CategoryAcademic, core.SummaryKeyFacts}:       "For academic content, extract facts related to the research question, methodology, sample size, key findings, statistical significance, limitations, and implications.",

	{core.CategoryNews, core.SummaryConcise}:        "For news content, focus on the 5 W's (Who, What, When, Where, Why) and How. Prioritize the most newsworthy information following the inverted pyramid structure.",
	{core.CategoryNews, core.SummaryDetailed}:       "For news content, follow the inverted pyramid structure with the most important information first. Include relevant quotes, context, and background information. Maintain journalistic objectivity.",
	{core.CategoryNews, core.SummaryBulletPoints}:   "For news content, organize bullet points by importance, starting with the most newsworthy information. Include the 5 W's (Who, What, When, Where, Why) and How.",
	{core.CategoryNews, core.SummaryQuestionAnswer}: "For news content, structure questions around: What happened? Who was involved? When and where did it occur? Why did it happen? What are the implications or next steps?",
	{core.CategoryNews, core.SummaryKeyFacts}:       "For news content, extract facts related to the main event, key figures involved, location, timing, causes, and consequences.",

	{core.CategoryTechnical, core.SummaryConcise}:        "For technical content, focus on the main concepts, technologies, or processes described. Use precise technical terminology and maintain accuracy.",
	{core.CategoryTechnical, core.SummaryDetailed}:       "For technical content, structure your summary to include the problem being addressed, the technical approach or solution, implementation details, and results or outcomes. Maintain technical accuracy and use appropriate terminology.",
	{core.CategoryTechnical, core.SummaryBulletPoints}:   "For technical content, organize bullet points by technical components: problem statement, approach, implementation details, technologies used, results, and limitations.",
	{core.CategoryTechnical, core.SummaryQuestionAnswer}: "For technical content, structure questions around: What problem is being addressed? What technical approach or solution is proposed? How is it implemented? What technologies are used? What are the results or outcomes?",
	{core.CategoryTechnical, core.SummaryKeyFacts}:       "For technical content, extract facts related to the technical problem, approach, implementation details, technologies used, performance metrics, and limitations.",

	{core.CategoryCreative, core.SummaryConcise}:        "For creative content, focus on the main themes, characters, plot points, or artistic elements. Avoid spoilers unless necessary for understanding.",
	{core.CategoryCreative, core.SummaryDetailed}:       "For creative content, structure your summary to include the setting, characters, plot, themes, and style. Preserve the tone of the original work and highlight notable creative elements.",
	{core.CategoryCreative, core.SummaryBulletPoints}:   "For creative content, organize bullet points by creative elements: setting, characters, plot points, themes, style, and notable quotes or passages.",
	{core.CategoryCreative, core.SummaryQuestionAnswer}: "For creative content, structure questions around: What is the setting? Who are the main characters? What happens in the plot? What themes are explored? What creative techniques are used?",
	{core.CategoryCreative, core.SummaryKeyFacts}:       "For creative content, extract facts related to the setting, characters, plot points, themes, style, and notable creative elements.",

	{core.CategoryBusiness, core.SummaryConcise}:        "For business content, focus on the key business insights, strategies, market trends, or financial information. Highlight actionable information and business implications.",
	{core.CategoryBusiness, core.SummaryDetailed}:       "For business content, structure your summary to include the business context, challenges, strategies, market analysis, financial information, and recommendations. Use appropriate business terminology.",
	{core.CategoryBusiness, core.SummaryBulletPoints}:   "For business content, organize bullet points by business components: market situation, challenges, strategies, financial data, competitive analysis, and recommendations.",
	{core.CategoryBusiness, core.SummaryQuestionAnswer}: "For business content, structure questions around: What is the business context? What challenges are addressed? What strategies are proposed? What market trends are relevant? What are the financial implications? What recommendations are made?",
	{core.CategoryBusiness, core.SummaryKeyFacts}:       "For business content, extract facts related to the business context, market data, financial information, competitive analysis, strategies, and recommendations.",

	{core.CategoryPersonal, core.SummaryConcise}:        "For personal content, focus on the main experiences, reflections, or emotions expressed. Maintain the personal voice and perspective.",
	{core.CategoryPersonal, core.SummaryDetailed}:       "For personal content, structure your summary to include the personal context, experiences, reflections, emotions, and insights. Preserve the personal voice and respect the subjective nature of the content.",
	{core.CategoryPersonal, core.SummaryBulletPoints}:   "For personal content, organize bullet points by personal elements: context, experiences, reflections, emotions, insights, and future intentions.",
	{core.CategoryPersonal, core.SummaryQuestionAnswer}: "For personal content, structure questions around: What is the personal context? What experiences are described? What reflections are shared? What emotions are expressed? What insights or lessons are gained?",
	{core.CategoryPersonal, core.SummaryKeyFacts}:       "For personal content, extract facts related to the personal context, experiences, reflections, emotions, insights, and future intentions.",
}

// userGuidance is appended to the summary request.
var userGuidance = map[promptKey]string{
	{core.CategoryAcademic, core.SummaryConcise}:        "This is academic content. Focus on the research question, methodology, key findings, and implications.",
	{core.CategoryAcademic, core.SummaryDetailed}:       "This is academic content. Include the research question, theoretical framework, methodology, results, discussion, and implications.",
	{core.CategoryAcademic, core.SummaryBulletPoints}:   "This is academic content. Organize bullet points by research components: research question, methodology, key findings, limitations, and implications.",
	{core.CategoryAcademic, core.SummaryQuestionAnswer}: "This is academic content. Include questions about the research question, methodology, key findings, implications, and limitations.",
	{core.CategoryAcademic, core.SummaryKeyFacts}:       "This is academic content. Extract facts about the research question, methodology, sample size, key findings, statistical significance, limitations, and implications.",

	{core.CategoryNews, core.SummaryConcise}:        "This is news content. Focus on the 5 W's (Who, What, When, Where, Why) and How.",
	{core.CategoryNews, core.SummaryDetailed}:       "This is news content. Follow the inverted pyramid structure with the most important information first. Include relevant quotes, context, and background information.",
	{core.CategoryNews, core.SummaryBulletPoints}:   "This is news content. Organize bullet points by importance, starting with the most newsworthy information. Include the 5 W's (Who, What, When, Where, Why) and How.",
	{core.CategoryNews, core.SummaryQuestionAnswer}: "This is news content. Include questions about what happened, who was involved, when and where it occurred, why it happened, and the implications or next steps.",
	{core.CategoryNews, core.SummaryKeyFacts}:       "This is news content. Extract facts about the main event, key figures involved, location, timing, causes, and consequences.",

	{core.CategoryTechnical, core.SummaryConcise}:        "This is technical content. Focus on the main concepts, technologies, or processes described.",
	{core.CategoryTechnical, core.SummaryDetailed}:       "This is technical content. Include the problem being addressed, the technical approach or solution, implementation details, and results or outcomes.",
	{core.CategoryTechnical, core.SummaryBulletPoints}:   "This is technical content. Organize bullet points by technical components: problem statement, approach, implementation details, technologies used, results, and limitations.",
	{core.CategoryTechnical, core.SummaryQuestionAnswer}: "This is technical content. Include questions about the problem being addressed, the technical approach or solution, implementation details, technologies used, and results or outcomes.",
	{core.CategoryTechnical, core.SummaryKeyFacts}:       "This is technical content. Extract facts about the technical problem, approach, implementation details, technologies used, performance metrics, and limitations.",

	{core.CategoryCreative, core.SummaryConcise}:        "This is creative content. Focus on the main themes, characters, plot points, or artistic elements. Avoid spoilers unless necessary for understanding.",
	{core.CategoryCreative, core.SummaryDetailed}:       "This is creative content. Include the setting, characters, plot, themes, and style. Preserve the tone of the original work.",
	{core.CategoryCreative, core.SummaryBulletPoints}:   "This is creative content. Organize bullet points by creative elements: setting, characters, plot points, themes, style, and notable quotes or passages.",
	{core.CategoryCreative, core.SummaryQuestionAnswer}: "This is creative content. Include questions about the setting, main characters, plot, themes, and creative techniques used.",
	{core.CategoryCreative, core.SummaryKeyFacts}:       "This is creative content. Extract facts about the setting, characters, plot points, themes, style, and notable creative elements.",

	{core.CategoryBusiness, core.SummaryConcise}:        "This is business content. Focus on the key business insights, strategies, market trends, or financial information.",
	{core.CategoryBusiness, core.SummaryDetailed}:       "This is business content. Include the business context, challenges, strategies, market analysis, financial information, and recommendations.",
	{core.CategoryBusiness, core.SummaryBulletPoints}:   "This is business content. Organize bullet points by business components: market situation, challenges, strategies, financial data, competitive analysis, and recommendations.",
	{core.CategoryBusiness, core.SummaryQuestionAnswer}: "This is business content. Include questions about the business context, challenges, strategies, market trends, financial implications, and recommendations.",
	{core.CategoryBusiness, core.SummaryKeyFacts}:       "This is business content. Extract facts about the business context, market data, financial information, competitive analysis, strategies, and recommendations.",

	{core.CategoryPersonal, core.SummaryConcise}:        "This is personal content. Focus on the main experiences, reflections, or emotions expressed. Maintain the personal voice and perspective.",
	{core.CategoryPersonal, core.SummaryDetailed}:       "This is personal content. Include the personal context, experiences, reflections, emotions, and insights. Preserve the personal voice.",
	{core.CategoryPersonal, core.SummaryBulletPoints}:   "This is personal content. Organize bullet points by personal elements: context, experiences, reflections, emotions, insights, and future intentions.",
	{core.CategoryPersonal, core.SummaryQuestionAnswer}: "This is personal content. Include questions about the personal context, experiences, reflections, emotions, and insights or lessons gained.",
	{core.CategoryPersonal, core.SummaryKeyFacts}:       "This is personal content. Extract facts about the personal context, experiences, reflections, emotions, insights, and future intentions.",
}

// SystemPrompt returns the summary-shape system prompt followed by the
// category guidance. CategoryUnknown adds nothing.
func SystemPrompt(category core.ContentCategory, summary core.SummaryType) string {
	base := service.SystemPrompt(0, false, summary)
	if g, ok := systemGuidance[promptKey{category, summary}]; ok {
		return base + "\n\n" + g
	}
	return base
}

// Instructions returns the category guidance for the summary request,
// followed by the caller's own instructions when present. The result is
// passed to the service as custom instructions.
func Instructions(category core.ContentCategory, summary core.SummaryType, custom string) string {
	g := userGuidance[promptKey{category, summary}]
	switch {
	case g == "":
		return custom
	case custom == "":
		return g
	default:
		return g + "\n\n" + custom
	}
}
