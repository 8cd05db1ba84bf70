// Package console is the interactive terminal front end of the booking client.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nekogravitycat/workplace-booking/internal/booking"
	"github.com/nekogravitycat/workplace-booking/internal/bookingform"
	"github.com/nekogravitycat/workplace-booking/internal/bookinglist"
	"github.com/nekogravitycat/workplace-booking/internal/session"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

var errQuit = errors.New("quit")

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

type Console struct {
	form   *bookingform.Controller
	auth   *session.Authenticator
	in     *Prompter
	out    io.Writer
	logger *slog.Logger

	commands   map[string]command
	order      []string
	lastNotice uint64
}

func New(form *bookingform.Controller, auth *session.Authenticator, in *Prompter, out io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Console{
		form:   form,
		auth:   auth,
		in:     in,
		out:    out,
		logger: logger.With("component", "console"),
	}
	c.register()
	return c
}

func (c *Console) register() {
	c.commands = map[string]command{}
	add := func(name, usage, help string, run func(ctx context.Context, args []string) error) {
		c.commands[name] = command{usage: usage, help: help, run: run}
		c.order = append(c.order, name)
	}

	add("show", "show", "print the booking form", c.cmdShow)
	add("branch", "branch <moscow|spb>", "choose the office", c.cmdBranch)
	add("kind", "kind <workplace|negotiation|conference>", "choose the place type", c.cmdKind)
	add("places", "places", "list the places of the chosen type", c.cmdPlaces)
	add("place", "place <id>", "choose a place", c.cmdPlace)
	add("date", "date <DD.MM.YYYY>", "choose the day", c.cmdDate)
	add("start", "start <HH:MM>", "choose the start time", c.cmdStart)
	add("end", "end <HH:MM>", "choose the end time", c.cmdEnd)
	add("purpose", "purpose [text]", "describe the booking", c.cmdPurpose)
	add("check", "check", "check whether the place is free", c.cmdCheck)
	add("book", "book", "review the checked booking", c.cmdBook)
	add("confirm", "confirm", "create the reviewed booking", c.cmdConfirm)
	add("back", "back", "close the review without booking", c.cmdBack)
	add("slots", "slots", "list bookings of the chosen place", c.cmdSlots)
	add("bookings", "bookings", "list your bookings", c.cmdBookings)
	add("filter", "filter <all|moscow|spb>", "filter your bookings by office", c.cmdFilter)
	add("cancel", "cancel <booking id>", "cancel one of your bookings", c.cmdCancel)
	add("whoami", "whoami", "show the logged in user", c.cmdWhoami)
	add("login", "login", "log in as another user", c.cmdLogin)
	add("logout", "logout", "forget the saved session", c.cmdLogout)
	add("help", "help", "list commands", c.cmdHelp)
	add("quit", "quit", "exit", func(context.Context, []string) error { return errQuit })
}

// Run restores or creates a session, loads the form and processes commands
// until quit, end of input or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	sess, err := c.auth.Current(ctx)
	if err != nil {
		c.logger.Debug("no saved session", "error", err)
		sess, err = c.login(ctx)
		if err != nil {
			return ignoreEOF(err)
		}
	}
	c.printf("Welcome, %s.\n", displayName(sess))

	if err := c.form.Load(ctx); err != nil {
		c.printf("Error: %v\n", err)
	}
	c.printNotice()
	c.printf("Type \"help\" for the list of commands.\n")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := c.in.ReadLine("> ")
		if err != nil {
			return ignoreEOF(err)
		}
		if line == "" {
			continue
		}
		if err := c.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
				return ignoreEOF(err)
			}
			c.printError(err)
		}
		c.printNotice()
	}
}

func (c *Console) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]
	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, type \"help\"", name)
	}
	return cmd.run(ctx, args)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func (c *Console) login(ctx context.Context) (*session.Session, error) {
	for {
		username, err := c.in.ReadLine("Username: ")
		if err != nil {
			return nil, err
		}
		password, err := c.in.ReadLine("Password: ")
		if err != nil {
			return nil, err
		}
		sess, err := c.auth.Login(ctx, username, password)
		if err == nil {
			return sess, nil
		}
		c.printf("Login failed: %v\n", err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
}

func displayName(s *session.Session) string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Username
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) printError(err error) {
	switch {
	case errors.Is(err, bookingform.ErrStale):
		c.logger.Debug("stale result dropped", "error", err)
	case errors.Is(err, bookingform.ErrCancelDeclined):
		c.printf("Nothing was cancelled.\n")
	case errors.Is(err, bookingform.ErrOccupied):
		// The form already reported it.
	default:
		var verr *bookingform.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Failures {
				c.printf("  - %s\n", f.Message)
			}
			return
		}
		c.printf("Error: %v\n", err)
	}
}

// printNotice prints the current notice once.
func (c *Console) printNotice() {
	n := c.form.Notice()
	if n == nil || n.Seq == c.lastNotice {
		return
	}
	c.lastNotice = n.Seq
	prefix := "i"
	switch n.Level {
	case bookingform.NoticeSuccess:
		prefix = "ok"
	case bookingform.NoticeError:
		prefix = "!"
	}
	c.printf("[%s] %s\n", prefix, n.Text)
}

func oneArg(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return args[0], nil
}

func (c *Console) cmdShow(ctx context.Context, args []string) error {
	s := c.form.Snapshot()
	sel := s.Selection

	c.printf("Office:  %s\n", sel.Branch.Label())
	c.printf("Type:    %s\n", sel.Kind)
	if s.Resource != nil {
		c.printf("Place:   %s [%s]\n", s.Resource.OptionLabel(), s.Resource.ID)
	} else {
		c.printf("Place:   -\n")
	}
	c.printf("Date:    %s\n", orDash(sel.Date))
	c.printf("Time:    %s - %s\n", orDash(sel.StartTime), orDash(sel.EndTime))
	c.printf("Purpose: %s\n", orDash(sel.Purpose))
	c.printf("Status:  %s\n", s.State)
	for _, f := range s.Failures {
		c.printf("  - %s\n", f.Message)
	}
	if s.CanConfirm {
		c.printf("The place is available. Type \"book\" to continue.\n")
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (c *Console) cmdBranch(ctx context.Context, args []string) error {
	arg, err := oneArg(args, c.commands["branch"].usage)
	if err != nil {
		return err
	}
	b, err := workplace.ParseBranch(strings.ToLower(arg))
	if err != nil {
		return err
	}
	if err := c.form.SelectBranch(ctx, b); err != nil {
		return err
	}
	return c.cmdPlaces(ctx, nil)
}

func (c *Console) cmdKind(ctx context.Context, args []string) error {
	arg, err := oneArg(args, c.commands["kind"].usage)
	if err != nil {
		return err
	}
	k, err := workplace.ParseKind(strings.ToLower(arg))
	if err != nil {
		return err
	}
	if err := c.form.SelectResourceKind(ctx, k); err != nil {
		return err
	}
	return c.cmdPlaces(ctx, nil)
}

func (c *Console) cmdPlaces(ctx context.Context, args []string) error {
	s := c.form.Snapshot()
	if len(s.Options) == 0 {
		c.printf("No places of this type in %s.\n", s.Selection.Branch.Label())
		return nil
	}
	for _, r := range s.Options {
		mark := " "
		if r.ID == s.Selection.ResourceID {
			mark = "*"
		}
		c.printf("%s %-16s %s\n", mark, r.ID, r.OptionLabel())
	}
	return nil
}

func (c *Console) cmdPlace(ctx context.Context, args []string) error {
	id, err := oneArg(args, c.commands["place"].usage)
	if err != nil {
		return err
	}
	if err := c.form.SelectResource(ctx, id); err != nil {
		return err
	}
	return c.cmdSlots(ctx, nil)
}

func (c *Console) cmdDate(ctx context.Context, args []string) error {
	arg, err := oneArg(args, c.commands["date"].usage)
	if err != nil {
		return err
	}
	d, err := booking.ParseDate(arg)
	if err != nil {
		return err
	}
	return c.form.SetDate(d)
}

func (c *Console) cmdStart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.printf("Start options: %s\n", strings.Join(c.form.Snapshot().StartSlots, " "))
		return nil
	}
	return c.form.SetStartTime(args[0])
}

func (c *Console) cmdEnd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.printf("End options: %s\n", strings.Join(c.form.Snapshot().EndSlots, " "))
		return nil
	}
	return c.form.SetEndTime(args[0])
}

func (c *Console) cmdPurpose(ctx context.Context, args []string) error {
	c.form.SetPurpose(strings.Join(args, " "))
	return nil
}

func (c *Console) cmdCheck(ctx context.Context, args []string) error {
	_, err := c.form.CheckAvailability(ctx)
	return err
}

func (c *Console) cmdBook(ctx context.Context, args []string) error {
	p, err := c.form.RequestConfirmation()
	if err != nil {
		return err
	}
	c.printf("Please review the booking:\n")
	c.printf("  Place:   %s\n", p.Resource.Name)
	c.printf("  Office:  %s\n", p.Resource.Branch.Label())
	c.printf("  Date:    %s\n", p.Date)
	c.printf("  Time:    %s - %s\n", p.StartTime, p.EndTime)
	c.printf("  Purpose: %s\n", p.Purpose)
	c.printf("Type \"confirm\" to book or \"back\" to change it.\n")
	return nil
}

func (c *Console) cmdConfirm(ctx context.Context, args []string) error {
	_, err := c.form.ConfirmBooking(ctx)
	return err
}

func (c *Console) cmdBack(ctx context.Context, args []string) error {
	c.form.CancelConfirmation()
	return nil
}

func (c *Console) cmdSlots(ctx context.Context, args []string) error {
	view := c.form.Occupied()
	if view.Empty() {
		c.printf("%s\n", view.EmptyMessage)
		return nil
	}
	c.printf("Occupied:\n")
	for _, s := range view.Slots {
		c.printf("  %s  %s  %s\n", s.Date, s.TimeRange, s.Purpose)
	}
	return nil
}

func (c *Console) cmdBookings(ctx context.Context, args []string) error {
	if err := c.form.RefreshMyBookings(ctx); err != nil && !errors.Is(err, bookingform.ErrStale) {
		return err
	}
	view := c.form.MyBookings()
	if view.Empty() {
		c.printf("%s\n", view.EmptyMessage)
		return nil
	}
	for _, it := range view.Items {
		c.printf("%s  %s, %s  %s  %s  [%s]\n", it.ID, it.ResourceName, it.Branch, it.Date, it.TimeRange, it.StatusLabel)
		if it.Purpose != "" {
			c.printf("    %s\n", it.Purpose)
		}
	}
	return nil
}

func (c *Console) cmdFilter(ctx context.Context, args []string) error {
	arg, err := oneArg(args, c.commands["filter"].usage)
	if err != nil {
		return err
	}
	f, err := bookinglist.ParseFilter(strings.ToLower(arg))
	if err != nil {
		return err
	}
	c.form.SetBookingsFilter(f)
	return c.cmdBookings(ctx, nil)
}

func (c *Console) cmdCancel(ctx context.Context, args []string) error {
	id, err := oneArg(args, c.commands["cancel"].usage)
	if err != nil {
		return err
	}
	return c.form.CancelBooking(ctx, id)
}

func (c *Console) cmdWhoami(ctx context.Context, args []string) error {
	sess, err := c.auth.Current(ctx)
	if err != nil {
		return bookingform.ErrNotAuthenticated
	}
	c.printf("%s (%s), %s\n", displayName(sess), sess.Username, sess.Role)
	return nil
}

func (c *Console) cmdLogin(ctx context.Context, args []string) error {
	sess, err := c.login(ctx)
	if err != nil {
		return err
	}
	c.printf("Welcome, %s.\n", displayName(sess))
	if err := c.form.RefreshMyBookings(ctx); err != nil && !errors.Is(err, bookingform.ErrStale) {
		return err
	}
	return nil
}

func (c *Console) cmdLogout(ctx context.Context, args []string) error {
	if err := c.auth.Logout(ctx); err != nil {
		return err
	}
	c.printf("Logged out. Type \"login\" to sign in again.\n")
	return nil
}

func (c *Console) cmdHelp(ctx context.Context, args []string) error {
	for _, name := range c.order {
		cmd := c.commands[name]
		c.printf("  %-42s %s\n", cmd.usage, cmd.help)
	}
	return nil
}
