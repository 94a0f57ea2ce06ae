package model

// ================ Config ================

// ConversationConfig bounds conversational memory. One exchange is a
// (user request, assistant answer) pair; the oldest exchanges are dropped,
// not summarized, once MaxExchanges is exceeded.
type ConversationConfig struct {
	TTL          string `envconfig:"CONVERSATION_TTL" default:"15m"`
	MaxExchanges int    `envconfig:"CONVERSATION_MAX_EXCHANGES" default:"10"`
}

// ClassifierModelConfig configures the intent-classification model.
// Temperature stays at 0 so classification is reproducible given identical input.
type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"256"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0"`
	Timeout     string  `envconfig:"CLASSIFIER_TIMEOUT" default:"20s"`
}

// AnswerModelConfig configures the grounded-answer / tool-extraction model.
type AnswerModelConfig struct {
	Model       string  `envconfig:"ANSWER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ANSWER_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"ANSWER_TEMPERATURE" default:"0"`
	Timeout     string  `envconfig:"ANSWER_TIMEOUT" default:"45s"`
}

// RetrievalConfig configures chunking and similarity search.
type RetrievalConfig struct {
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	ChunkSize      int    `envconfig:"RETRIEVAL_CHUNK_SIZE" default:"800"`
	ChunkOverlap   int    `envconfig:"RETRIEVAL_CHUNK_OVERLAP" default:"150"`
	TopK           int    `envconfig:"RETRIEVAL_TOP_K" default:"5"`
	Timeout        string `envconfig:"EMBEDDING_TIMEOUT" default:"30s"`
}

// CorpusConfig locates the policy documents loaded at startup.
type CorpusConfig struct {
	DocsDir string `envconfig:"CORPUS_DOCS_DIR" default:"docs"`
}
