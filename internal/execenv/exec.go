package execenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/openclaw/clawvault/internal/authstore"
	claverrors "github.com/openclaw/clawvault/internal/errors"
	"github.com/openclaw/clawvault/internal/logging"
	"github.com/openclaw/clawvault/internal/stores"
)

// Executor runs the agent process with migrated credentials resolved
// back from the secret store into an explicit environment. The parent
// process environment is never mutated.
type Executor struct {
	logger *logging.Logger
	store  stores.Store
}

// New creates an executor backed by the given store
func New(logger *logging.Logger, store stores.Store) *Executor {
	return &Executor{logger: logger, store: store}
}

// ExecOptions configures command execution
type ExecOptions struct {
	Command     []string          // Command and arguments to run
	Environment map[string]string // Resolved variables to set
	PrintVars   bool              // Print variable names (values masked)
	WorkingDir  string            // Working directory for the command
	Timeout     int               // Timeout in seconds (0 for no timeout)
}

// Resolve fetches the placeholder env vars of an auth store from the
// secret store. Every placeholder must resolve; a missing secret means
// the store and the file have diverged.
func (e *Executor) Resolve(ctx context.Context, doc *authstore.Document) (map[string]string, error) {
	names := doc.PlaceholderNames()
	env := make(map[string]string, len(names))

	for _, name := range names {
		value, err := e.store.Get(ctx, name)
		if err != nil {
			if stores.IsNotFound(err) {
				return nil, claverrors.UserError{
					Message:    fmt.Sprintf("Secret %s referenced by %s is not in the %s store", name, doc.Path, e.store.Name()),
					Suggestion: "Re-run the migration, or restore the auth store from its backup",
					Err:        err,
				}
			}
			return nil, fmt.Errorf("resolving %s from %s store: %w", name, e.store.Name(), err)
		}
		env[name] = value
	}

	e.logger.Debug("Resolved %d env vars for %s", len(env), doc.Path)
	return env, nil
}

// Exec runs a command with the provided environment variables
func (e *Executor) Exec(ctx context.Context, options ExecOptions) error {
	if len(options.Command) == 0 {
		return claverrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., clawvault exec --agent main -- openclaw-gateway)",
		}
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(options.Timeout)*time.Second)
		defer cancel()
	}

	cmdName := options.Command[0]
	if _, err := exec.LookPath(cmdName); err != nil {
		return claverrors.UserError{
			Message:    fmt.Sprintf("Command not found: %s", cmdName),
			Suggestion: "Check the command is installed and on PATH",
			Err:        err,
		}
	}

	if options.PrintVars {
		e.printEnvironment(options.Environment)
	}

	cmd := exec.CommandContext(ctx, cmdName, options.Command[1:]...)
	cmd.Env = buildEnvironment(options.Environment)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	e.logger.Debug("Executing command: %s", strings.Join(options.Command, " "))
	e.logger.Debug("Environment variables set: %d", len(options.Environment))

	if err := cmd.Run(); err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			// Preserve the exit code from the child process
			if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
				os.Exit(status.ExitStatus())
			}
			os.Exit(1)
		}
		values := make([]string, 0, len(options.Environment))
		for _, v := range options.Environment {
			values = append(values, v)
		}
		return claverrors.UserError{
			Message:    fmt.Sprintf("Command failed: %s", strings.Join(options.Command, " ")),
			Details:    logging.Redact(err.Error(), values),
			Suggestion: "Check the command output above for details",
			Err:        err,
		}
	}

	return nil
}

// buildEnvironment merges the resolved variables over the current
// process environment into the slice form exec.Cmd wants. Resolved
// values win over inherited ones.
func buildEnvironment(resolved map[string]string) []string {
	envMap := make(map[string]string)
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}
	for key, value := range resolved {
		envMap[key] = value
	}

	result := make([]string, 0, len(envMap))
	for key, value := range envMap {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(result)
	return result
}

// printEnvironment displays the resolved variables with values masked
func (e *Executor) printEnvironment(environment map[string]string) {
	if len(environment) == 0 {
		fmt.Println("No environment variables resolved")
		return
	}

	fmt.Printf("Resolved %d environment variables:\n", len(environment))

	keys := make([]string, 0, len(environment))
	for key := range environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Printf("  %s=%s\n", key, maskValue(environment[key]))
	}
	fmt.Println()
}

// maskValue masks a secret value for display
func maskValue(value string) string {
	if len(value) == 0 {
		return "(empty)"
	}
	if len(value) <= 3 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:1] + strings.Repeat("*", len(value)-2) + value[len(value)-1:]
	}
	return value[:3] + strings.Repeat("*", 8) + value[len(value)-2:]
}
