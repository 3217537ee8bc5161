package entity

// OdaModelConfig describes one LLM endpoint binding: an openai-compatible
// base URL, the credential for it, and the model name to request.
//
// model_id is unique within app_name. The reserved id
// "__default_llm_config" denotes the built-in default derived from
// bootstrap configuration; it never reaches a persistent store.
type OdaModelConfig struct {
	AppName string `json:"app_name"`
	ModelID string `json:"model_id"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
}
