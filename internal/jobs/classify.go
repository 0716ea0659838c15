package jobs

import "strings"

// recoverableSignatures mark engine failures where entity extraction
// evidently succeeded and only the late community-report generation produced
// malformed structured output. The base content is queryable in that case, so
// the document is still marked ready instead of discarding the work.
var recoverableSignatures = []string{
	"JSONDecodeError",
	"Expecting ':' delimiter",
}

// RecoverableInsertFailure reports whether an engine insertion error matches
// the partial-success signature.
func RecoverableInsertFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sig := range recoverableSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

const partialSuccessWarning = "Warning: Community reports incomplete due to LLM response formatting issues.\n\n" +
	"Entities and relationships were successfully extracted, but some high-level summaries may be missing.\n\n" +
	"Original error: "

const incompleteGraphWarning = "\n\nWarning: Community reports may be incomplete due to LLM JSON formatting issues."
