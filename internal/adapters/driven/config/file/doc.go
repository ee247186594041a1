// Package file provides file-based implementations of driven port interfaces.
// Everything lives under the folio home directory (~/.folio by default).
//
// Adapters:
//   - ConfigStore: settings in config.toml
//   - PromptStore: editable LLM prompt templates in prompts/
package file
