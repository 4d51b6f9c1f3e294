package tasks

// Keys recorded in place of a value that could not be determined.
const (
	KeyMissingMainPackage = "MISSING-MAIN-PACKAGE"
	KeyNoCPE              = "NO-CPE"
	KeyInvalidPackageID   = "INVALID-PACKAGE-ID"
	KeyMissingTitle       = "MISSING TITLE"
)

func isSentinel(key string) bool {
	switch key {
	case KeyMissingMainPackage, KeyNoCPE, KeyInvalidPackageID, KeyMissingTitle:
		return true
	}
	return false
}
