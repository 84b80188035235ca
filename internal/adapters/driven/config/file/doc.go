// Package file provides file-based implementations of configuration
// driven ports.
//
// ConfigStore persists application settings as TOML at
// ~/.quill/config.toml. PromptStore serves user-editable LLM prompt
// templates from ~/.quill/prompts/, falling back to embedded defaults.
package file
