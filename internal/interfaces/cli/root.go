package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/doctoshotgun/internal/application/scheduler"
	"github.com/example/doctoshotgun/internal/application/usecases"
	"github.com/example/doctoshotgun/internal/domain/booking"
	"github.com/example/doctoshotgun/internal/infrastructure/config"
	"github.com/example/doctoshotgun/internal/infrastructure/doctolib"
	"github.com/example/doctoshotgun/internal/infrastructure/logging"
	"github.com/example/doctoshotgun/internal/infrastructure/terminal"
	"github.com/example/doctoshotgun/internal/internaltypes"
)

const noPatientsMsg = "It seems that you don't have any Patient registered in your Doctolib account. Please fill your Patient data on Doctolib Website."

// exitError ends the command with a code after its message was already
// shown to the operator.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func NewRoot(in io.Reader, out, errOut io.Writer) *cobra.Command {
	s := streams{in: in, out: out, err: errOut}
	cmd := &cobra.Command{
		Use:           "doctoshotgun <city> <username> [password]",
		Short:         "Book a vaccine slot on Doctolib",
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.book(cmd, args)
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.Flags().BoolP("debug", "d", false, "show debug information")
	cmd.Flags().IntP("patient", "p", -1, "give patient ID")
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Run executes the command line and returns the process exit code. An
// interrupt cancels the run and exits with 1.
func Run(args []string, in io.Reader, out, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRoot(in, out, errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	var ee exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	case ctx.Err() != nil:
		fmt.Fprintln(out, "Abort.")
		return 1
	default:
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
}

func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func (s streams) book(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.NewZapLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	status := logging.NewStatus(s.out)
	prompter := terminal.New(s.in, s.out)

	password := ""
	if len(args) == 3 {
		password = args[2]
	}
	if password == "" {
		if password, err = prompter.Password(ctx); err != nil {
			return err
		}
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	if err := client.Login(ctx, args[1], password); err != nil {
		if errors.Is(err, internaltypes.ErrUnauthorized) {
			fmt.Fprintln(s.out, "Wrong login/password")
			return exitError{code: 1}
		}
		return err
	}

	patients, err := client.MasterPatients(ctx)
	if err != nil {
		return err
	}
	if len(patients) == 0 {
		fmt.Fprintln(s.out, noPatientsMsg)
		return exitError{code: 1}
	}
	patient, err := choosePatient(ctx, prompter, patients, cfg.PatientIndex)
	if err != nil {
		return err
	}

	status.Printf("Starting to look for vaccine slots for %s %s...", patient.FirstName, patient.LastName)
	status.Printf("This may take a few minutes/hours, be patient!")
	city := booking.NormalizeCity(args[0])

	runner := scheduler.Runner{
		Locator: usecases.LocateCenters{
			Provider:     client,
			RefMotiveIDs: cfg.RefMotiveIDs,
			Fallbacks:    cfg.FallbackCenters,
			Logger:       logger,
		},
		Booker: usecases.BookCenter{
			Provider:      client,
			Poller:        usecases.PollAvailability{Provider: client},
			Fields:        usecases.FieldResolver{Prompter: prompter},
			Notifier:      terminal.Bell{Out: s.out},
			Status:        status,
			Logger:        logger,
			MotivePattern: cfg.MotivePattern,
			Patient:       patient,
			Limit:         cfg.AvailabilityLimit,
			BaseURL:       cfg.BaseURL,
			Today:         time.Now,
		},
		Status: status,
		Logger: logger,
		Pause:  cfg.Pause,
	}

	err = runner.Run(ctx, city)
	switch {
	case err == nil:
		status.Booked()
		return nil
	case usecases.IsCityNotFound(err):
		status.Error("City %s not found. For now Doctoshotgun works only in Germany.", city)
		return exitError{code: 1}
	default:
		return err
	}
}

func newClient(cfg config.Config, logger *zap.Logger) (*doctolib.Client, error) {
	opts := []doctolib.Option{
		doctolib.WithTimeout(cfg.Timeout),
		doctolib.WithLogger(logger),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, doctolib.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Rate > 0 {
		opts = append(opts, doctolib.WithRateLimit(cfg.Rate))
	}
	if cfg.Debug {
		capture, err := doctolib.NewCapture(logger)
		if err != nil {
			return nil, err
		}
		logger.Info("saving exchanges", zap.String("dir", capture.Dir()))
		opts = append(opts, doctolib.WithCapture(capture))
	}
	return doctolib.New(cfg.BaseURL, opts...)
}

type chooser interface {
	Choose(ctx context.Context, title, question string, options []string) (int, error)
}

// choosePatient uses the index given on the command line when it is in
// range, the only patient when there is one, and asks otherwise.
func choosePatient(ctx context.Context, c chooser, patients []booking.Patient, index int) (booking.Patient, error) {
	if index >= 0 && index < len(patients) {
		return patients[index], nil
	}
	if len(patients) == 1 {
		return patients[0], nil
	}
	names := make([]string, len(patients))
	for i, p := range patients {
		names[i] = p.FullName()
	}
	i, err := c.Choose(ctx, "Available patients are:", "For which patient do you want to book a slot?", names)
	if err != nil {
		return booking.Patient{}, err
	}
	return patients[i], nil
}
