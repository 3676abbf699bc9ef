// SPDX-License-Identifier: AGPL-3.0-or-later

package release

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ExtractFile returns the first archive member whose name ends with suffix.
// found is false when no member matches.
func ExtractFile(archive []byte, suffix string) (data []byte, found bool, err error) {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, false, fmt.Errorf("opening archive: %w", err)
	}
	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, suffix) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, true, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		return data, true, nil
	}
	return nil, false, nil
}
