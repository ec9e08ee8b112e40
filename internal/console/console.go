// Package console drives the collector from a line-oriented terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"canvass/internal/collector"
	"canvass/internal/domain"
	"canvass/internal/wizard"
)

const help = `commands:
  next | back | goto N        move between steps
  set FIELD VALUE             fill a field (choices are listed on each step)
  verify                      look up the entered ID number
  summary                     review before submitting
  submit                      save the record (needs consent)
  download                    request the profile document
  new                         start a new entry
  status                      check the record store connection
  logout | quit`

// errQuit ends the loop without an error.
var errQuit = errors.New("quit")

type Console struct {
	app *collector.App
	in  *bufio.Scanner
	out io.Writer
}

func New(app *collector.App, in io.Reader, out io.Writer) *Console {
	return &Console{app: app, in: bufio.NewScanner(in), out: out}
}

// Run restores or establishes a session and then processes commands until
// quit, logout or end of input.
func (c *Console) Run(ctx context.Context) error {
	if c.app.Start(ctx) == nil {
		if !c.login(ctx) {
			return nil
		}
	}
	c.render()

	for {
		fmt.Fprint(c.out, "> ")
		line, ok := c.readLine()
		if !ok {
			return c.in.Err()
		}
		if err := c.Exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

// login prompts for credentials until sign-in succeeds or input ends.
func (c *Console) login(ctx context.Context) bool {
	for {
		creds, ok := c.promptCredentials()
		if !ok {
			return false
		}
		if c.app.SignIn(ctx, creds.Email, creds.Password) == nil {
			return true
		}
	}
}

func (c *Console) promptCredentials() (domain.Credentials, bool) {
	var creds domain.Credentials
	var ok bool
	fmt.Fprint(c.out, "Email: ")
	if creds.Email, ok = c.readLine(); !ok {
		return creds, false
	}
	fmt.Fprint(c.out, "Password: ")
	if creds.Password, ok = c.readLine(); !ok {
		return creds, false
	}
	return creds, true
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// Exec runs one command line. Operator mistakes are reported through the
// notifier and never end the loop.
func (c *Console) Exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "help", "?":
		fmt.Fprintln(c.out, help)
	case "next":
		c.app.Next()
		c.render()
	case "back":
		c.app.Back()
		c.render()
	case "goto":
		n, err := strconv.Atoi(rest)
		if err != nil || !c.app.GoToStep(n) {
			fmt.Fprintf(c.out, "no such step: %q\n", rest)
			return nil
		}
		c.render()
	case "set":
		name, value, _ := strings.Cut(rest, " ")
		if c.app.SetField(name, value) == nil {
			c.renderFields()
		}
	case "verify":
		if _, err := c.app.Verify(ctx); err == nil {
			c.app.GoToStep(wizard.StepVerification)
			c.render()
		}
	case "summary":
		fmt.Fprintln(c.out, c.app.ShowSummary())
	case "submit":
		if stored, err := c.app.Submit(ctx); err == nil {
			fmt.Fprintf(c.out, "record %s saved at %s\n", stored.ID, stored.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	case "download":
		c.app.DownloadProfile()
	case "new":
		c.app.NewEntry()
		c.render()
	case "status":
		c.app.CheckConnectivity(ctx)
	case "logout":
		c.app.SignOut(ctx)
		return errQuit
	case "quit", "exit":
		return errQuit
	default:
		fmt.Fprintf(c.out, "unknown command %q, type help\n", cmd)
	}
	return nil
}

func (c *Console) render() {
	w := c.app.Wizard()
	step, _ := wizard.StepInfo(w.CurrentStep())
	fmt.Fprintf(c.out, "\nStep %d of %d: %s (%.0f%%)\n", step.Number, wizard.TotalSteps, step.Name, w.Progress())
	switch step.Number {
	case wizard.StepSummary:
		fmt.Fprintln(c.out, w.Summary())
	case wizard.StepConfirmation:
		fmt.Fprintln(c.out, "Record submitted. Type new for another entry or download for the profile.")
	case wizard.StepVerification:
		c.renderFields()
		if v := w.Verification(); v != nil && v.Note != "" {
			fmt.Fprintf(c.out, "  note: %s\n", v.Note)
		}
	default:
		c.renderFields()
	}
}

func (c *Console) renderFields() {
	w := c.app.Wizard()
	step, _ := wizard.StepInfo(w.CurrentStep())
	for _, name := range step.Fields {
		value, _ := w.Field(name)
		line := fmt.Sprintf("  %-20s %s", name, value)
		if choices := wizard.Choices(name); choices != nil {
			line += "  [" + strings.Join(choices, "|") + "]"
		}
		fmt.Fprintln(c.out, line)
	}
}
