package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/claude/drgym/internal/feed"
	"github.com/claude/drgym/internal/models"
	"github.com/claude/drgym/internal/notify"
	"github.com/claude/drgym/internal/postdialog"
	"github.com/claude/drgym/internal/schema"
	"github.com/claude/drgym/internal/workoutform"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

func (a *app) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = envOr("DRGYM_PASSWORD", "")
			}
			s, err := a.api.Login(cmd.Context(), username, password)
			if err != nil {
				a.notify(notify.Error, "Login failed")
				return err
			}
			if err := a.sessions.Save(a.server, s); err != nil {
				return err
			}
			a.notify(notify.Success, "Logged in as "+s.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (or DRGYM_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sessions.Clear(a.server)
		},
	}
}

func (a *app) workoutsCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "List workouts (yours or a friend's)",
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := a.requireSession()
			if err != nil {
				return err
			}
			if user == "" {
				user = me
			}
			workouts, err := a.api.ListWorkouts(cmd.Context(), user)
			if err != nil {
				return a.handleAPIError(err)
			}
			printWorkouts(cmd.OutOrStdout(), workouts)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "whose workouts to list (default: you)")
	return cmd
}

func (a *app) feedCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show posts from friends or your own",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := feed.ParseFilter(filter); err != nil {
				return err
			}
			me, err := a.requireSession()
			if err != nil {
				return err
			}

			loader := feed.NewLoader(a.api)
			loaded := false
			load := func(f feed.Filter) {
				loader.Load(cmd.Context(), me, f)
				loaded = true
			}
			page := feed.NewPage(load)
			page.Select(filter)
			if !loaded {
				load(page.Filter())
			}
			res := loader.Current()
			if res.Err != nil {
				return a.handleAPIError(res.Err)
			}
			printPosts(cmd.OutOrStdout(), res.Posts)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(feed.Friends), "friends or my")
	return cmd
}

func (a *app) postCmd() *cobra.Command {
	var title, content, workout string
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Share one of your workouts as a post",
		Long: `Share one of your workouts as a post.

Without --workout the available workouts are listed with their numbers.
Pass --workout with a number from that list or a workout id.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := a.requireSession()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			d := postdialog.New(a.deps.Notifier)
			if err := d.Open(cmd.Context(), a.api, me); err != nil {
				return a.handleAPIError(err)
			}

			if workout == "" {
				fmt.Fprintln(out, d.Message())
				printWorkoutChoices(out, d.Available())
				return nil
			}
			id, err := resolveWorkout(d.Available(), workout)
			if err != nil {
				return err
			}
			d.Toggle(id)

			d.SetTitle(title)
			d.SetDescription(content)
			sub, ok, errs := d.Submit()
			if len(errs) > 0 {
				printErrors(cmd.ErrOrStderr(), errs)
				return errs
			}
			if !ok {
				return errors.New(d.Message())
			}

			post, err := a.api.CreatePost(cmd.Context(), models.PostCreateRequest{
				Username:  me,
				Title:     sub.Title,
				Content:   sub.Description,
				WorkoutID: &sub.Workout.ID,
			})
			if err != nil {
				a.notify(notify.Error, "Error creating post")
				return a.handleAPIError(err)
			}
			a.notify(notify.Success, "Post created")
			fmt.Fprintln(out, post.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&content, "content", "", "post text")
	cmd.Flags().StringVar(&workout, "workout", "", "workout number or id to attach")
	return cmd
}

func (a *app) logWorkoutCmd() *cobra.Command {
	var (
		start, end, description string
		strength, cardio        []string
	)
	cmd := &cobra.Command{
		Use:   "log-workout",
		Short: "Record a workout",
		Example: `  drgym-cli log-workout --start "2024-05-01 07:00" --end "2024-05-01 08:00" \
    --strength "barbell squat:5:60" --cardio "jogging:0:20:00"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			catalog, err := a.api.ListExercises(cmd.Context(), models.ExerciseUnset)
			if err != nil {
				return a.handleAPIError(err)
			}
			f := workoutform.NewForm(workoutform.WithCatalog(catalog))

			if err := fillTimes(f, start, end, time.Now()); err != nil {
				return err
			}
			f.SetDescription(description)

			for _, s := range strength {
				if err := addStrength(f, s); err != nil {
					return err
				}
			}
			for _, c := range cardio {
				if err := addCardio(f, c); err != nil {
					return err
				}
			}

			sub, errs, err := f.Submit()
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				printErrors(cmd.ErrOrStderr(), errs)
				return errs
			}

			w, err := a.api.CreateWorkout(cmd.Context(), sub)
			if err != nil {
				a.notify(notify.Error, "Error creating workout")
				return a.handleAPIError(err)
			}
			a.notify(notify.Success, "Workout created")
			fmt.Fprintln(cmd.OutOrStdout(), w.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", `start time "YYYY-MM-DD HH:MM" (default: one hour before end)`)
	cmd.Flags().StringVar(&end, "end", "", `end time "YYYY-MM-DD HH:MM" (default: now)`)
	cmd.Flags().StringVar(&description, "description", "", "workout description")
	cmd.Flags().StringArrayVar(&strength, "strength", nil, `strength exercise "name:sets:weight" (repeatable)`)
	cmd.Flags().StringArrayVar(&cardio, "cardio", nil, `cardio exercise "name:H:MM:SS" (repeatable)`)
	return cmd
}

func fillTimes(f *workoutform.Form, start, end string, now time.Time) error {
	e := now
	if end != "" {
		t, err := time.ParseInLocation(timeLayout, end, time.Local)
		if err != nil {
			return fmt.Errorf("parsing --end: %w", err)
		}
		e = t
	}
	s := e.Add(-time.Hour)
	if start != "" {
		t, err := time.ParseInLocation(timeLayout, start, time.Local)
		if err != nil {
			return fmt.Errorf("parsing --start: %w", err)
		}
		s = t
	}
	f.SetStartDate(s)
	f.SetEndDate(e)
	return nil
}

func addStrength(f *workoutform.Form, entry string) error {
	parts := strings.Split(entry, ":")
	if len(parts) != 3 {
		return fmt.Errorf("strength entry %q: want name:sets:weight", entry)
	}
	f.SetExerciseType(models.ExerciseStrength)
	if err := setExercise(f, parts[0]); err != nil {
		return err
	}
	if parts[1] != "" {
		sets, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("strength entry %q: invalid sets: %w", entry, err)
		}
		f.SetSets(sets)
	}
	if parts[2] != "" {
		kg, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return fmt.Errorf("strength entry %q: invalid weight: %w", entry, err)
		}
		f.SetWeight(kg)
	}
	return addDraft(f, entry)
}

func addCardio(f *workoutform.Form, entry string) error {
	name, dur, ok := strings.Cut(entry, ":")
	if !ok {
		return fmt.Errorf("cardio entry %q: want name:H:MM:SS", entry)
	}
	f.SetExerciseType(models.ExerciseCardio)
	if err := setExercise(f, name); err != nil {
		return err
	}
	if dur != "" {
		d, err := models.ParseDuration(dur)
		if err != nil {
			return fmt.Errorf("cardio entry %q: %w", entry, err)
		}
		f.SetDuration(d.Std())
	}
	return addDraft(f, entry)
}

func setExercise(f *workoutform.Form, name string) error {
	opts := f.ExerciseOptions()
	for _, o := range opts {
		if o == name {
			f.SetExercise(name)
			return nil
		}
	}
	return fmt.Errorf("unknown %s exercise %q (choose from: %s)", f.ExerciseType(), name, strings.Join(opts, ", "))
}

func addDraft(f *workoutform.Form, entry string) error {
	if errs := f.AddExercise(); len(errs) > 0 {
		return fmt.Errorf("exercise %q: %w", entry, errs)
	}
	return nil
}

func resolveWorkout(available []models.Workout, ref string) (uuid.UUID, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(available) {
			return uuid.Nil, fmt.Errorf("workout number %d out of range (1-%d)", n, len(available))
		}
		return available[n-1].ID, nil
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("workout %q is neither a number nor an id", ref)
	}
	for _, w := range available {
		if w.ID == id {
			return id, nil
		}
	}
	return uuid.Nil, fmt.Errorf("workout %s not found among your workouts", id)
}

func printWorkouts(out io.Writer, workouts []models.Workout) {
	if len(workouts) == 0 {
		fmt.Fprintln(out, "No workouts.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tDESCRIPTION\tEXERCISES")
	for _, w := range workouts {
		names := make([]string, 0, len(w.Activities))
		for _, act := range w.Activities {
			names = append(names, act.ExerciseName)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			w.StartDate.Local().Format(timeLayout), w.EndDate.Local().Format(timeLayout),
			w.Description, strings.Join(names, ", "))
	}
	tw.Flush()
}

func printWorkoutChoices(out io.Writer, workouts []models.Workout) {
	for i, w := range workouts {
		label := w.Description
		if w.Exercise != "" {
			label = fmt.Sprintf("%s (%s)", label, w.Exercise)
		}
		fmt.Fprintf(out, "%3d. %s  %s\n", i+1, w.StartDate.Local().Format(timeLayout), label)
	}
}

func printPosts(out io.Writer, posts []models.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts.")
		return
	}
	for _, p := range posts {
		fmt.Fprintf(out, "%s  @%s  %s\n", p.Date.Local().Format(timeLayout), p.Username, p.Title)
		if p.Content != "" {
			fmt.Fprintf(out, "    %s\n", p.Content)
		}
		if p.Workout != nil {
			fmt.Fprintf(out, "    workout: %s\n", p.Workout.Description)
		}
	}
}

func printErrors(out io.Writer, errs schema.Errors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(out, "%s: %s\n", f, errs[f])
	}
}
