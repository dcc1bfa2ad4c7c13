package ledger

// ManifestSchemaVersion identifies the manifest wire shape. Downstream
// consumers diff manifests across exports; bump only with a migration
// note.
const ManifestSchemaVersion = "1.0"

// Manifest describes the file set of one export plus a summary of ledger
// integrity. Produced once at export time, read-only afterward. It exists
// so a verifier can short-circuit gross corruption before walking the
// whole chain.
type Manifest struct {
	SchemaVersion string            `json:"schemaVersion"`
	EventCount    int               `json:"eventCount"`
	FinalHash     string            `json:"finalHash"`
	ChainValid    bool              `json:"chainValid"`
	FileChecksums map[string]string `json:"fileChecksums,omitempty"`
}

// NewManifest summarizes a finished chain. chainValid records the
// producer's own final consistency pass; the verifier recomputes it from
// scratch and trusts nothing here.
func NewManifest(entries []Entry, fileChecksums map[string]string) Manifest {
	return Manifest{
		SchemaVersion: ManifestSchemaVersion,
		EventCount:    len(entries),
		FinalHash:     FinalHashOf(entries),
		ChainValid:    Consistent(entries),
		FileChecksums: fileChecksums,
	}
}

// Consistent reports whether the stored entries link correctly: seq values
// are 0..n-1 and every previousHash equals the predecessor's chainHash
// (genesis at entry 0). It does NOT recompute hashes; that is the
// verifier's job.
func Consistent(entries []Entry) bool {
	prev := FinalHashOf(nil)
	for i, e := range entries {
		if e.Seq != i || e.PreviousHash != prev {
			return false
		}
		prev = e.ChainHash
	}
	return true
}
