package tasks

import "fmt"

// The structured two-section instruction used for both single-chunk input
// and the final combining pass over per-chunk summaries.
const summaryInstruction = "Write ONLY the following two sections for the text below:\n" +
	"Summary: [Write a single, concise paragraph summarizing the main research question, methodology, findings, and implications. Do not include any section headers, meta-comments, or repeated information.]\n" +
	"Key Highlights: [After the summary, write exactly one section titled 'Key Highlights:' on a new line, followed by 2-4 bullet points. Each bullet should begin with a bolded label (e.g., **Novelty:**, **Findings:**, **Implication:**) and be concise, non-redundant, and directly related to the main contributions or results.]\n" +
	"Do not repeat information between the summary and highlights. Do not continue writing after the highlights section. Do not include any XML, HTML, or markdown other than bold for the highlight labels. Only output the summary and the 'Key Highlights:' section, nothing else.\n\n"

func summaryPrompt(text string) string {
	return summaryInstruction + text
}

func chunkSummaryPrompt(text string, index, total int) string {
	return fmt.Sprintf("Summarize the following part of a research paper (part %d of %d):\n\n%s", index+1, total, text)
}

func combinePrompt(combined string) string {
	return "Write ONLY the following two sections for the text below (which is a set of summaries of a research paper):\n" +
		"Summary: [Write a single, concise paragraph summarizing the main research question, methodology, findings, and implications. Do not include any section headers, meta-comments, or repeated information.]\n" +
		"Key Highlights: [After the summary, write exactly one section titled 'Key Highlights:' on a new line, followed by 2-4 bullet points. Each bullet should begin with a bolded label (e.g., **Novelty:**, **Findings:**, **Implication:**) and be concise, non-redundant, and directly related to the main contributions or results.]\n" +
		"Do not repeat information between the summary and highlights. Do not continue writing after the highlights section. Do not include any XML, HTML, or markdown other than bold for the highlight labels. Only output the summary and the 'Key Highlights:' section, nothing else.\n\n" +
		combined
}

// Adaptation prompts anchor each level with a worked example; models follow
// the example far more reliably than the instruction alone.
var adaptExamples = map[Level]string{
	LevelBeginner: "Original: Quantum entanglement is a phenomenon where particles become linked and the state of one instantly influences the other, no matter the distance.\n" +
		"Beginner: Sometimes, tiny things like particles can be connected so that when something happens to one, the other changes too, even if they're far apart.",
	LevelIntermediate: "Original: Quantum entanglement is a phenomenon where particles become linked and the state of one instantly influences the other, no matter the distance.\n" +
		"Intermediate: Quantum entanglement means that two particles can be connected in such a way that changing one will instantly affect the other, even if they are far apart.",
	LevelExpert: "Original: Quantum entanglement is a phenomenon where particles become linked and the state of one instantly influences the other, no matter the distance.\n" +
		"Expert: Quantum entanglement describes a nonlocal correlation between quantum systems, such that the measurement of one system's state instantaneously determines the state of its entangled partner, regardless of spatial separation.",
}

func adaptPrompt(text string, level Level) string {
	example, ok := adaptExamples[level]
	if !ok {
		example = adaptExamples[LevelIntermediate]
	}
	article := "a"
	if level == LevelIntermediate || level == LevelExpert {
		article = "an"
	}
	return fmt.Sprintf(
		"Rewrite the following text for %s %s. ONLY output the rewritten text. Do NOT include instructions, apologies, or explanations.\n\nExample:\n%s\n\nText: %s",
		article, lower(level), example, text,
	)
}

func lower(l Level) string {
	switch l {
	case LevelBeginner:
		return "beginner"
	case LevelExpert:
		return "expert"
	default:
		return "intermediate reader"
	}
}

func flashcardPrompt(text string, numCards int) string {
	return fmt.Sprintf(`Create %d flashcards from the following text. Format each flashcard as:
Question: [your question here]
Answer: [your answer here]

Example:
Question: What is semantic communication?
Answer: Semantic communication is a paradigm that focuses on the meaning of information exchanged in communication systems.

Text: %s
`, numCards, text)
}
