package sdk

// SupportedSchemaMajor is the major planner://schema version this client
// speaks. Compatible fails when the server reports a different major.
const SupportedSchemaMajor = "1"
