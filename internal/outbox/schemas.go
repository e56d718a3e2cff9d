package outbox

const weightRecordedSchema = `{
  "type": "object",
  "title": "WeightRecorded",
  "properties": {
    "tenant_id": {"type": "string"},
    "client_id": {"type": "string"},
    "date": {"type": "string", "format": "date"},
    "weight_kg": {"type": "number"},
    "is_friday_weigh_in": {"type": "boolean"},
    "recorded_at": {"type": "string", "format": "date-time"}
  },
  "required": ["tenant_id", "client_id", "date", "weight_kg", "is_friday_weigh_in", "recorded_at"],
  "additionalProperties": false
}`

const photoUploadedSchema = `{
  "type": "object",
  "title": "PhotoUploaded",
  "properties": {
    "photo_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "client_id": {"type": "string"},
    "date": {"type": "string", "format": "date"},
    "category": {"type": "string"},
    "physical_slot": {"type": "string"},
    "is_friday_photo": {"type": "boolean"},
    "url": {"type": "string"},
    "uploaded_at": {"type": "string", "format": "date-time"}
  },
  "required": ["photo_id", "tenant_id", "client_id", "date", "category", "physical_slot", "is_friday_photo", "url", "uploaded_at"],
  "additionalProperties": false
}`

const photoDeletedSchema = `{
  "type": "object",
  "title": "PhotoDeleted",
  "properties": {
    "photo_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "client_id": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["photo_id", "tenant_id", "client_id", "occurred_at"],
  "additionalProperties": false
}`
