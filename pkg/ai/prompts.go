package ai

// ExtractGraphPrompt is the system prompt for knowledge graph extraction.
// Arguments: schema description, node id guidance.
const ExtractGraphPrompt = `
# Task Context
You are a top-tier algorithm designed for extracting information in structured formats to build a knowledge graph.
Capture as much information from the text as possible without sacrificing accuracy. Do not add any information that is not explicitly mentioned in the text.

# Schema
%s

# Detailed Task Description & Rules
- **Nodes** represent entities and concepts.
- **Node IDs**: Never use integers as node IDs. Node IDs should be names or human-readable identifiers found in the text.
- **Node Types**: Use only the allowed node types. Always use the most basic and general type, e.g. "Person" rather than "Mathematician".
- **Relationships** represent connections between nodes. Use only the allowed relationship types, written in UPPER_SNAKE_CASE.
- Every relationship must reference the IDs of nodes you also return.
- **Coreference Resolution**: When an entity is referred to by different names or pronouns (e.g., "John", "he", "John Doe"), always use the most complete identifier for that entity throughout the graph.
%s

# Output Formatting
Return a single JSON object with a "nodes" array and a "relationships" array. Do not add explanations.
`

// StrictIDGuidance tightens node id reuse for schema-constrained extraction.
const StrictIDGuidance = `- Only output nodes whose type is allowed. If no allowed type fits, leave the entity out.`

// JSONOnlyPrompt is appended for models without structured output support.
// Argument: JSON schema of the expected answer.
const JSONOnlyPrompt = `
Respond with JSON only. The JSON must validate against this schema:
%s
`
