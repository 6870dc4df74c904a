// Package suggest infers missing task attributes from recorded context.
//
// The flow is Build (bounded request) → Provider.Infer (external) →
// Normalize (typed, partial Suggestion) → Merge (fill only what the user
// left empty). Build, Normalize, Resolve and Merge are pure. Session and
// Engine add the single in-flight request guarantee: a response that arrives
// after a newer request was issued never touches the draft.
package suggest
