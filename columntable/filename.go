package columntable

import (
	"fmt"
	"path/filepath"
)

// TableFileName returns the main table file path for a file number:
// <dbname>/<NNNNNN>.sst.
func TableFileName(dbname string, number uint64) string {
	return filepath.Join(dbname, fmt.Sprintf("%06d.sst", number))
}

// SubcolumnFileName returns the path of subcolumn i (1-based) for a main
// table file: <main>.C<i>.
func SubcolumnFileName(mainPath string, i int) string {
	return fmt.Sprintf("%s.C%d", mainPath, i)
}
