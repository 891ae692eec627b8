// Package protocol defines the JSON messages exchanged between the editor
// engine and the assistant server.
//
// Every message travels as one JSON object whose "type" field names it; the
// remaining fields are the message body.
package protocol

const (
	TypePredictionRequest  = "prediction_request"
	TypePredictionResponse = "prediction_response"
	TypeSpellCheckRequest  = "spell_check_request"
	TypeSpellCheckResponse = "spell_check_response"
	TypeEdit               = "edit"
	TypeEditResponse       = "edit_response"
	TypeAddWord            = "add_word"
	TypeRemoveWord         = "remove_word"
	TypeDictionaryUpdated  = "dictionary_updated"
	TypeHealthRequest      = "health_request"
	TypeHealthResponse     = "health_response"
	TypeConnectionStatus   = "connection_status"
	TypeFilesChanged       = "files_changed"
	TypeError              = "error"
)

// Message is implemented by every message body.
type Message interface {
	MessageType() string
}

type PredictionMetadata struct {
	ParagraphIndex         int `json:"paragraph_index"`
	TotalParagraphs        int `json:"total_paragraphs"`
	OriginalCursorPosition int `json:"original_cursor_position"`
}

type PredictionRequest struct {
	PrevContext  string             `json:"prevContext"`
	CurrentText  string             `json:"currentText"`
	AfterContext string             `json:"afterContext"`
	Cursor       int                `json:"cursor"`
	Metadata     PredictionMetadata `json:"metadata"`
}

type PredictionResponse struct {
	Prediction     string             `json:"prediction"`
	CursorPosition int                `json:"cursor_position"`
	Metadata       PredictionMetadata `json:"metadata"`
}

type SpellCheckRequest struct {
	Lines    []string `json:"lines"`
	Language string   `json:"language"`
}

type SpellError struct {
	Word        string   `json:"word"`
	Position    int      `json:"position"`
	Suggestions []string `json:"suggestions"`
}

// SpellCheckResponse maps a line index to the errors found on that line.
type SpellCheckResponse struct {
	Success  bool                 `json:"success"`
	Errors   map[int][]SpellError `json:"errors"`
	Language string               `json:"language,omitempty"`
	Engine   string               `json:"engine,omitempty"`
	Error    string               `json:"error,omitempty"`
}

type Edit struct {
	Filename       string `json:"filename"`
	Content        string `json:"content"`
	CursorPosition int    `json:"cursor_position"`
}

type EditResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

type AddWord struct {
	Word string `json:"word"`
}

type RemoveWord struct {
	Word string `json:"word"`
}

type DictionaryUpdated struct {
	Success bool   `json:"success"`
	Word    string `json:"word"`
	Action  string `json:"action,omitempty"` // "added" or "removed"
	Error   string `json:"error,omitempty"`
}

type HealthRequest struct{}

type HealthResponse struct {
	Status           string `json:"status"`
	SpellEngine      string `json:"spell_engine"`
	PredictionEngine string `json:"prediction_engine"`
	Clients          int    `json:"clients"`
}

type ConnectionStatus struct {
	Status  string `json:"status"` // "connected" or "disconnected"
	Message string `json:"message,omitempty"`
}

// FilesChanged announces a change in the server's file store.
type FilesChanged struct {
	Files []string `json:"files"`
}

type Error struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (PredictionRequest) MessageType() string  { return TypePredictionRequest }
func (PredictionResponse) MessageType() string { return TypePredictionResponse }
func (SpellCheckRequest) MessageType() string  { return TypeSpellCheckRequest }
func (SpellCheckResponse) MessageType() string { return TypeSpellCheckResponse }
func (Edit) MessageType() string               { return TypeEdit }
func (EditResponse) MessageType() string       { return TypeEditResponse }
func (AddWord) MessageType() string            { return TypeAddWord }
func (RemoveWord) MessageType() string         { return TypeRemoveWord }
func (DictionaryUpdated) MessageType() string  { return TypeDictionaryUpdated }
func (HealthRequest) MessageType() string      { return TypeHealthRequest }
func (HealthResponse) MessageType() string     { return TypeHealthResponse }
func (ConnectionStatus) MessageType() string   { return TypeConnectionStatus }
func (FilesChanged) MessageType() string       { return TypeFilesChanged }
func (Error) MessageType() string              { return TypeError }
