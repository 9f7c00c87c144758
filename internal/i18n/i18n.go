// Package i18n holds the locale catalog for user-facing strings, LLM system
// prompts, and the locale-scoped detection patterns. The locale set is
// closed: unrecognized tags fall back to DefaultLocale for every lookup.
package i18n

import "regexp"

// Locale tags supported by the backend.
const (
	LocalePTBR = "pt-BR"
	LocaleEN   = "en"
)

// DefaultLocale is used for every unrecognized locale tag.
const DefaultLocale = LocalePTBR

// Translation keys.
const (
	KeyChatSystemPrompt     = "chat_system_prompt"
	KeyVisionSystemPrompt   = "vision_system_prompt"
	KeyRAGContextHeader     = "rag_context_header"
	KeyChatFallback         = "chat_fallback"
	KeyVisionFallback       = "vision_fallback"
	KeyDefaultImageQuestion = "default_image_question"
	KeyNewConversation      = "new_conversation"
)

var translations = map[string]map[string]string{
	LocalePTBR: {
		KeyChatSystemPrompt: "Voce e o NaviAI, um assistente digital amigavel criado para ajudar pessoas idosas.\n\n" +
			"Regras:\n" +
			"- Responda SEMPRE em linguagem simples e clara\n" +
			"- Use frases curtas e diretas\n" +
			"- Quando explicar um processo, use \"Passo 1:\", \"Passo 2:\", etc.\n" +
			"- Nunca use jargao tecnico sem explicar o que significa\n" +
			"- Se o usuario perguntar como fazer algo, de instrucoes passo a passo\n" +
			"- Seja paciente, carinhoso e respeitoso\n" +
			"- Se detectar dados sensiveis (CPF, conta bancaria, senhas), alerte o usuario\n" +
			"- Responda em portugues brasileiro",
		KeyVisionSystemPrompt: "Voce e o NaviAI, um assistente visual amigavel criado para ajudar pessoas idosas a entender imagens.\n\n" +
			"Regras:\n" +
			"- Descreva a imagem de forma simples e clara\n" +
			"- Use frases curtas e diretas\n" +
			"- Se a imagem mostrar um processo ou tela, explique passo a passo usando \"Passo 1:\", \"Passo 2:\", etc.\n" +
			"- Nunca use jargao tecnico sem explicar o que significa\n" +
			"- Se detectar dados sensiveis na imagem (CPF, conta bancaria, senhas, numeros de cartao), ALERTE o usuario imediatamente\n" +
			"- Responda em portugues brasileiro\n" +
			"- Seja paciente, carinhoso e respeitoso",
		KeyRAGContextHeader: "\n\n--- Contexto da base de conhecimento ---\n" +
			"Use as informacoes abaixo para responder ao usuario de forma precisa. " +
			"Se a pergunta nao estiver relacionada ao contexto, responda com seu conhecimento geral.\n\n",
		KeyChatFallback: "Desculpe, estou com dificuldade para responder agora. " +
			"Por favor, tente novamente em alguns instantes.",
		KeyVisionFallback: "Desculpe, nao consegui analisar a imagem agora. " +
			"Por favor, tente novamente em alguns instantes.",
		KeyDefaultImageQuestion: "Descreva esta imagem de forma simples e clara.",
		KeyNewConversation:      "Nova conversa",
	},
	LocaleEN: {
		KeyChatSystemPrompt: "You are NaviAI, a friendly digital assistant designed to help elderly people.\n\n" +
			"Rules:\n" +
			"- ALWAYS respond in simple and clear language\n" +
			"- Use short and direct sentences\n" +
			"- When explaining a process, use \"Step 1:\", \"Step 2:\", etc.\n" +
			"- Never use technical jargon without explaining what it means\n" +
			"- If the user asks how to do something, give step-by-step instructions\n" +
			"- Be patient, kind, and respectful\n" +
			"- If you detect sensitive data (SSN, bank account, passwords), alert the user\n" +
			"- Respond in English",
		KeyVisionSystemPrompt: "You are NaviAI, a friendly visual assistant designed to help elderly people understand images.\n\n" +
			"Rules:\n" +
			"- Describe the image in simple and clear language\n" +
			"- Use short and direct sentences\n" +
			"- If the image shows a process or screen, explain step by step using \"Step 1:\", \"Step 2:\", etc.\n" +
			"- Never use technical jargon without explaining what it means\n" +
			"- If you detect sensitive data in the image (SSN, bank accounts, passwords, card numbers), ALERT the user immediately\n" +
			"- Respond in English\n" +
			"- Be patient, kind, and respectful",
		KeyRAGContextHeader: "\n\n--- Knowledge base context ---\n" +
			"Use the information below to answer the user accurately. " +
			"If the question is not related to the context, respond with your general knowledge.\n\n",
		KeyChatFallback: "Sorry, I'm having trouble responding right now. " +
			"Please try again in a few moments.",
		KeyVisionFallback: "Sorry, I could not analyze the image right now. " +
			"Please try again in a few moments.",
		KeyDefaultImageQuestion: "Describe this image in simple and clear language.",
		KeyNewConversation:      "New conversation",
	},
}

// stepPatterns detect step-structured assistant content per locale.
var stepPatterns = map[string]*regexp.Regexp{
	LocalePTBR: regexp.MustCompile(`(?i)(?:Passo\s+\d+|Etapa\s+\d+|\d+[.)]\s)`),
	LocaleEN:   regexp.MustCompile(`(?i)(?:Step\s+\d+|\d+[.)]\s)`),
}

// sensitivePatterns detect mentions of sensitive data per locale.
var sensitivePatterns = map[string]*regexp.Regexp{
	LocalePTBR: regexp.MustCompile(`(?i)(?:CPF|senha|senhas|conta\s+bancaria|numero\s+do\s+cartao|cartao\s+de\s+credito|dados\s+pessoais|dados\s+sensiveis)`),
	LocaleEN:   regexp.MustCompile(`(?i)(?:SSN|social\s+security|password|passwords|bank\s+account|card\s+number|credit\s+card|personal\s+data|sensitive\s+data)`),
}

// Vision analysis checks both locales at once: a pt-BR reply mentioning
// "password" still warrants the sensitive-data flag.
var (
	stepPatternAll = regexp.MustCompile(
		`(?i)(?:Passo\s+\d+|Etapa\s+\d+|\d+[.)]\s)|(?:Step\s+\d+|\d+[.)]\s)`)
	sensitivePatternAll = regexp.MustCompile(
		`(?i)(?:CPF|senha|senhas|conta\s+bancaria|numero\s+do\s+cartao|cartao\s+de\s+credito|dados\s+pessoais|dados\s+sensiveis)` +
			`|(?:SSN|social\s+security|password|passwords|bank\s+account|card\s+number|credit\s+card|personal\s+data|sensitive\s+data)`)
)

// Normalize maps an arbitrary locale tag onto the supported set.
func Normalize(locale string) string {
	if _, ok := translations[locale]; ok {
		return locale
	}
	return DefaultLocale
}

// T returns the translated string for key under locale.
// Unknown locales fall back to DefaultLocale; unknown keys return the key
// itself so a missing translation is visible rather than silent.
func T(key, locale string) string {
	strings := translations[Normalize(locale)]
	if s, ok := strings[key]; ok {
		return s
	}
	if s, ok := translations[DefaultLocale][key]; ok {
		return s
	}
	return key
}

// StepPattern returns the step-detection regexp for locale.
func StepPattern(locale string) *regexp.Regexp {
	return stepPatterns[Normalize(locale)]
}

// SensitivePattern returns the sensitive-data regexp for locale.
func SensitivePattern(locale string) *regexp.Regexp {
	return sensitivePatterns[Normalize(locale)]
}

// StepPatternAll matches step structure in any supported locale.
func StepPatternAll() *regexp.Regexp {
	return stepPatternAll
}

// SensitivePatternAll matches sensitive-data mentions in any supported locale.
func SensitivePatternAll() *regexp.Regexp {
	return sensitivePatternAll
}
