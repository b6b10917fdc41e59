package analyzer

import "wallet-lens/pkg/types"

// GenerateWarnings creates warning array based on extraction results
func GenerateWarnings(
	key *types.KeyReport,
	recordsScanned bool,
	recordCount int,
	truncated bool,
	fellBack bool,
	keyLen int,
	securityLevel int,
) []types.Warning {
	warnings := make([]types.Warning, 0)

	// NO_RECORDS: the marker scan ran and found nothing
	if recordsScanned && recordCount == 0 {
		warnings = append(warnings, types.Warning{Code: "NO_RECORDS"})
	}

	// TRUNCATED_RECORD: a marker matched but its length or blob ran off the end
	if truncated {
		warnings = append(warnings, types.Warning{Code: "TRUNCATED_RECORD"})
	}

	// MULTIPLE_RECORDS: only the first record's key is reported as primary
	if recordCount > 1 {
		warnings = append(warnings, types.Warning{Code: "MULTIPLE_RECORDS"})
	}

	// ENTROPY_FALLBACK: the key is a statistical guess, not a tagged value
	if fellBack {
		warnings = append(warnings, types.Warning{Code: "ENTROPY_FALLBACK"})
	}

	if key == nil {
		warnings = append(warnings, types.Warning{Code: "NO_KEY"})
		return warnings
	}

	// SHORT_KEY: record blob shorter than the key length
	if key.Source == types.SourceTaggedRecord && key.Length < keyLen {
		warnings = append(warnings, types.Warning{Code: "SHORT_KEY"})
	}

	// LOW_ENTROPY: normalized score under the security level threshold
	normalized := 0.0
	if key.MaxEntropy > 0 {
		normalized = key.EntropyScore / key.MaxEntropy
	}
	if normalized < LowEntropyThreshold(securityLevel) {
		warnings = append(warnings, types.Warning{Code: "LOW_ENTROPY"})
	}

	return warnings
}
