package schema

import "strconv"

// Metadata field keys as stored in the vector collection and exposed over
// the API. Company, Subject and Year are optional; an empty string means the
// field was not inferred for the source file.
const (
	KeySource       = "source"
	KeyFileName     = "file_name"
	KeyFileType     = "file_type"
	KeyDocumentType = "document_type"
	KeyCompany      = "company"
	KeySubject      = "subject"
	KeyDifficulty   = "difficulty"
	KeyYear         = "year"
	KeyChunkID      = "chunk_id"
	KeyTotalChunks  = "total_chunks"
)

// DocumentType is the coarse classification of a source file's purpose.
type DocumentType string

const (
	PlacementPaper   DocumentType = "placement_paper"
	MockTest         DocumentType = "mock_test"
	LearningMaterial DocumentType = "learning_material"
)

// Difficulty is inferred from the file name and is never absent: files with
// no difficulty indicator default to medium.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Confidence is a coarse answer-quality label derived from the number of
// retrieved sources, not from embedding distance.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Metadata carries the semantic tags of one passage. All passages produced
// from the same source file share every field except ChunkID.
type Metadata struct {
	Source       string       `json:"source"`
	FileName     string       `json:"file_name"`
	FileType     string       `json:"file_type"`
	DocumentType DocumentType `json:"document_type"`
	Company      string       `json:"company,omitempty"`
	Subject      string       `json:"subject,omitempty"`
	Difficulty   Difficulty   `json:"difficulty"`
	Year         string       `json:"year,omitempty"`
	ChunkID      int          `json:"chunk_id"`
	TotalChunks  int          `json:"total_chunks"`
}

// Passage is the atomic unit of storage and retrieval: one chunk of
// extracted text plus its metadata. Passages are immutable once ingested.
type Passage struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// ScoredPassage pairs a retrieved passage with its relevance score,
// normalized so that higher is more similar.
type ScoredPassage struct {
	Passage Passage `json:"passage"`
	Score   float32 `json:"score"`
}

// Filters is an exact-match metadata predicate: a passage matches iff every
// key is present in its metadata with an equal value.
type Filters map[string]string

// Matches reports whether the metadata satisfies every filter entry.
func (f Filters) Matches(m Metadata) bool {
	fields := m.Fields()
	for key, want := range f {
		if fields[key] != want {
			return false
		}
	}
	return true
}

// Fields flattens the metadata into the string map persisted as store
// columns. Optional fields are included with their zero value so that column
// counts stay aligned across rows.
func (m Metadata) Fields() map[string]string {
	return map[string]string{
		KeySource:       m.Source,
		KeyFileName:     m.FileName,
		KeyFileType:     m.FileType,
		KeyDocumentType: string(m.DocumentType),
		KeyCompany:      m.Company,
		KeySubject:      m.Subject,
		KeyDifficulty:   string(m.Difficulty),
		KeyYear:         m.Year,
		KeyChunkID:      strconv.Itoa(m.ChunkID),
		KeyTotalChunks:  strconv.Itoa(m.TotalChunks),
	}
}

// MetadataFromFields rebuilds a Metadata from the flat string map produced
// by Fields. Unparseable counters are left at zero.
func MetadataFromFields(fields map[string]string) Metadata {
	chunkID, _ := strconv.Atoi(fields[KeyChunkID])
	totalChunks, _ := strconv.Atoi(fields[KeyTotalChunks])
	return Metadata{
		Source:       fields[KeySource],
		FileName:     fields[KeyFileName],
		FileType:     fields[KeyFileType],
		DocumentType: DocumentType(fields[KeyDocumentType]),
		Company:      fields[KeyCompany],
		Subject:      fields[KeySubject],
		Difficulty:   Difficulty(fields[KeyDifficulty]),
		Year:         fields[KeyYear],
		ChunkID:      chunkID,
		TotalChunks:  totalChunks,
	}
}

// Source is one entry of an answer's attribution list.
type Source struct {
	FileName       string       `json:"file_name"`
	Source         string       `json:"source"`
	ChunkID        int          `json:"chunk_id"`
	ContentPreview string       `json:"content_preview"`
	DocumentType   DocumentType `json:"document_type"`
	Company        string       `json:"company,omitempty"`
	Subject        string       `json:"subject,omitempty"`
	Difficulty     Difficulty   `json:"difficulty"`
	Year           string       `json:"year,omitempty"`
}

// Answer is the engine's response object. It is always well formed: empty
// retrievals and generation failures produce a low-confidence Answer, never
// an error to the caller.
type Answer struct {
	Text         string     `json:"answer"`
	Confidence   Confidence `json:"confidence"`
	Sources      []Source   `json:"sources"`
	TotalSources int        `json:"total_sources_found"`
	Err          string     `json:"error,omitempty"`
}
