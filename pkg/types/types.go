package types

// ExtractionOutput represents the complete JSON output for one wallet analysis
type ExtractionOutput struct {
	OK            bool           `json:"ok"`
	ReportID      string         `json:"report_id,omitempty"`
	WalletPath    string         `json:"wallet_path,omitempty"`
	WalletDigest  string         `json:"wallet_sha256d,omitempty"`
	SizeBytes     int            `json:"size_bytes"`
	Format        string         `json:"format,omitempty"`
	SecurityLevel int            `json:"security_level,omitempty"`
	Strategy      string         `json:"strategy,omitempty"`
	Marker        string         `json:"marker,omitempty"`
	WindowLen     int            `json:"window_len,omitempty"`
	AnalyzedAt    int64          `json:"analyzed_at"`
	Found         bool           `json:"found"`
	Key           *KeyReport     `json:"key"`
	Records       []RecordOutput `json:"records"`
	Truncation    *Truncation    `json:"truncation,omitempty"`
	Warnings      []Warning      `json:"warnings"`
	Error         *ErrorInfo     `json:"error,omitempty"`
}

// Key sources
const (
	SourceTaggedRecord  = "tagged-record"
	SourceEntropyWindow = "entropy-window"
)

// KeyReport describes the primary candidate key and how much to trust it
type KeyReport struct {
	Hex          string  `json:"hex"`
	Length       int     `json:"length"`
	Source       string  `json:"source"`
	Offset       int     `json:"offset"`
	EntropyScore float64 `json:"entropy_score"`
	MaxEntropy   float64 `json:"max_entropy"`
	Confidence   float64 `json:"confidence_pct"`
	EntropyLevel string  `json:"entropy_level"`
	Hash160      string  `json:"hash160"`
}

// RecordOutput represents one tagged record found in the wallet
type RecordOutput struct {
	Index        int            `json:"index"`
	Offset       int            `json:"offset"`
	Length       uint16         `json:"length"`
	ValueHex     string         `json:"value_hex"`
	KeyHex       string         `json:"key_hex"`
	KeyEntropy   float64        `json:"key_entropy"`
	EntropyLevel string         `json:"entropy_level"`
	MasterKey    *MasterKeyInfo `json:"master_key,omitempty"`
}

// MasterKeyInfo is the descriptive decode of a CMasterKey-shaped value blob
type MasterKeyInfo struct {
	EncryptedKeyHex  string `json:"encrypted_key_hex"`
	EncryptedKeyLen  int    `json:"encrypted_key_len"`
	SaltHex          string `json:"salt_hex"`
	DerivationMethod uint32 `json:"derivation_method"`
	DeriveIterations uint32 `json:"derive_iterations"`
	OtherParamsHex   string `json:"other_params_hex"`
	DerivationLabel  string `json:"derivation_label"`
}

// Truncation records where tagged-record scanning stopped early
type Truncation struct {
	Offset    int `json:"offset"`
	Declared  int `json:"declared"`
	Available int `json:"available"`
}

// Warning represents an analysis warning
type Warning struct {
	Code string `json:"code"`
}

// ErrorInfo represents an error response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
