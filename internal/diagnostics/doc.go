// Package diagnostics implements `commitbuddy --debug-api`: a self-check of
// the Message Source that explains why commit messages fall back to local
// generation.
//
// Checks:
//
//   - key: the credential is present and shaped like a Groq key
//   - connectivity: a one-token request and what its status means
//   - sample: a full generation for a built-in diff, normalized
//   - models: the configured model is listed by the endpoint
//   - fallback: the reasons a normal run would fall back
//
// The Report renders as text, YAML or JSON. Diagnostics never open the
// repository.
package diagnostics
