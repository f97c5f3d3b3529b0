package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/createlang/create/lang/engine"
	"github.com/createlang/create/lang/lexer"
)

const binName = "create"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <path>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <path>
       %[1]s -h|--help
       %[1]s -v|--version

Interpreter for the %[1]s programming language.

<path> is the source file to run.

Valid flag options are:
       -d --debug                Render errors as code + internal message
                                  instead of the short human message.
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

// Cmd is the CLI entry point, following the teacher's mna/mainer-driven
// struct-field-tag flag parsing (internal/maincmd's own original shape).
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`
	Debug   bool `flag:"d,debug"`

	path string
}

func (c *Cmd) SetArgs(args []string) {
	if len(args) > 0 {
		c.path = args[0]
	}
}

func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if c.path == "" {
		return fmt.Errorf("no source path specified")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: "CREATE_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.run(ctx, stdio); err != nil {
		c.report(stdio, err)
		return mainer.Failure
	}
	return mainer.Success
}

func (c *Cmd) run(_ context.Context, stdio mainer.Stdio) *engine.Error {
	src, err := os.ReadFile(c.path)
	if err != nil {
		return engine.NewError(engine.CodeInternal, "reading %q: %s", c.path, err)
	}

	toks, lexErr := lexer.Scan(string(src))
	if lexErr != nil {
		line, col := lexErr.Pos.LineCol()
		return engine.NewError(engine.CodeTokenizer, "%s:%d:%d: %s", c.path, line, col, lexErr.Message)
	}

	env := &engine.Environment{
		Buffers: engine.NewBufferStack(),
		Scope:   engine.NewFrame(),
		Stdout:  stdio.Stdout,
	}
	return engine.Run(env, engine.NewBuilder(toks))
}

func (c *Cmd) report(stdio mainer.Stdio, err *engine.Error) {
	if c.Debug {
		fmt.Fprintln(stdio.Stderr, err.Debug())
		return
	}
	fmt.Fprintln(stdio.Stderr, err.Error())
}
