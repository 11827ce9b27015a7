package internals

import (
	"fmt"
	"path/filepath"
	"strings"
)

// reportFileProgress emits one of the stable per-file progress lines of
// spec.md §6, choosing the line by the entry's outcome. history is consulted
// only for a VerifiedAndExtended entry, to pick out the algorithms whose
// hashes were newly created in this seal.
func reportFileProgress(p ProgressFunc, entry FileEntry, history *HistoryIndex) {
	if p == nil {
		return
	}
	switch entry.Outcome {
	case OutcomeNewFile:
		for algo, digest := range entry.Hashes {
			p(fmt.Sprintf("created original hash for     %s  %s: %s", entry.Path, algo, FormatDigest(algo, digest)))
		}
	case OutcomeVerified:
		p(fmt.Sprintf("verified                      %s  OK", entry.Path))
	case OutcomeVerifiedAndExtended:
		p(fmt.Sprintf("verified                      %s  OK", entry.Path))
		for algo, digest := range entry.Hashes {
			if _, known := history.KnownHashes(entry.Path)[algo]; !known {
				p(fmt.Sprintf("created new hash for          %s  %s: %s", entry.Path, algo, FormatDigest(algo, digest)))
			}
		}
	case OutcomeHashMismatch:
		p(fmt.Sprintf("ERROR: hash mismatch for      %s  %s (old): %s, %s (new): %s",
			entry.Path, entry.MismatchAlgo, FormatDigest(entry.MismatchAlgo, entry.MismatchOld),
			entry.MismatchAlgo, FormatDigest(entry.MismatchAlgo, entry.MismatchNew)))
	}
}

func reportMissingProgress(p ProgressFunc, path string) {
	if p == nil {
		return
	}
	p(fmt.Sprintf("ERROR: missing                %s", path))
}

func reportDirProgress(p ProgressFunc, dir WalkedDir, algo Algorithm) {
	if p == nil {
		return
	}
	p(fmt.Sprintf("calculated directory hash for %s  %s: %s (content), %s (structure)",
		dir.RelPath, algo, FormatDigest(algo, dir.ContentDigest[algo]), FormatDigest(algo, dir.StructureDigest[algo])))
}

func formatRootProgress(algo Algorithm, content, structure map[Algorithm][]byte) string {
	return fmt.Sprintf("calculated root hash          %s: %s (content), %s (structure)",
		algo, FormatDigest(algo, content[algo]), FormatDigest(algo, structure[algo]))
}

// relPathFromRoot expresses nestedAbs relative to rootAbs using slash
// separators, for recording a ChildHistoryRef's RelPath.
func relPathFromRoot(rootAbs, nestedAbs string) string {
	rel, err := filepath.Rel(rootAbs, nestedAbs)
	if err != nil {
		return nestedAbs
	}
	return strings.ReplaceAll(rel, string(filepath.Separator), "/")
}
