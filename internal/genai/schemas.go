package genai

// JSON schemas the structured generation calls validate model output
// against. Keeping them as data makes a bad model response a classified
// failure instead of a downstream panic.

// AnalysisSchema constrains the query understanding output.
const AnalysisSchema = `{
  "type": "object",
  "required": ["subject", "category", "suggestedQuestions", "isValidRti"],
  "properties": {
    "originalQuestion": {"type": "string"},
    "detectedLanguage": {"type": "string"},
    "translatedQuestion": {"type": "string"},
    "subject": {"type": "string", "minLength": 1},
    "category": {"type": "string", "minLength": 1},
    "extractedInfo": {
      "type": "object",
      "properties": {
        "whatIsNeeded": {"type": "string"},
        "timePeriod": {"type": "string"},
        "location": {"type": "string"},
        "specificIssue": {"type": "string"}
      }
    },
    "suggestedQuestions": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 1
    },
    "urgency": {"type": "string", "enum": ["low", "medium", "high"]},
    "isValidRti": {"type": "boolean"},
    "invalidReason": {"type": "string"}
  }
}`

// DraftSchema constrains the drafting output.
const DraftSchema = `{
  "type": "object",
  "required": ["subject", "formalQuestions", "fullApplicationText"],
  "properties": {
    "subject": {"type": "string", "minLength": 1},
    "formalQuestions": {
      "type": "array",
      "items": {"type": "string"},
      "minItems": 1
    },
    "fullApplicationText": {"type": "string", "minLength": 50},
    "relevantSections": {
      "type": "array",
      "items": {"type": "string"}
    },
    "tips": {"type": "string"}
  }
}`

// PredictionSchema constrains the success-prediction output.
const PredictionSchema = `{
  "type": "object",
  "required": ["successProbability", "riskLevel", "estimatedResponseDays"],
  "properties": {
    "successProbability": {"type": "number", "minimum": 0, "maximum": 1},
    "factors": {
      "type": "object",
      "properties": {
        "questionClarity": {"type": "number", "minimum": 0, "maximum": 1},
        "departmentResponsiveness": {"type": "number", "minimum": 0, "maximum": 1},
        "informationAvailability": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "riskLevel": {"type": "string", "enum": ["low", "medium", "high"]},
    "tips": {
      "type": "array",
      "items": {"type": "string"}
    },
    "estimatedResponseDays": {"type": "integer", "minimum": 1}
  }
}`
