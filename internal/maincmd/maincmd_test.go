package maincmd_test

import (
	"bytes"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/createlang/create/internal/filetest"
	"github.com/createlang/create/internal/maincmd"
)

var testUpdateMaincmdTests = flag.Bool("test.update-maincmd-tests", false, "If set, replace expected maincmd test results with actual results.")

// TestCmdMain runs every testdata/in/*.create program through the CLI's own
// Cmd.Main entry point and diffs stdout/stderr against testdata/out's golden
// files, the same source→result layout the teacher's scanner/parser/resolver
// packages use via internal/filetest.
func TestCmdMain(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".create") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{
				Stdout: &buf,
				Stderr: &ebuf,
			}

			c := &maincmd.Cmd{}
			c.Main([]string{"create", filepath.Join(srcDir, fi.Name())}, stdio)

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateMaincmdTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateMaincmdTests)
		})
	}
}
