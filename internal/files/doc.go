// Package files holds the file system helpers shared by the report writers
// and the command line.
//
// AtomicFile stages output in a hidden temporary file next to its target and
// renames it into place on Commit, so a failed or cancelled run never leaves
// a partial dashboard or export behind.
//
// Discovery scans the input directory for transaction extracts and derives
// the report dates they cover from the configured file name template.
//
//	af, err := files.Create("/out/monthly_dashboard_20240131.png")
//	if err != nil {
//		return err
//	}
//	if err := encode(af); err != nil {
//		af.Abort()
//		return err
//	}
//	return af.Commit()
package files
