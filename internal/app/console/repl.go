package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/accountable/internal/identity"
	"github.com/magabrotheeeer/accountable/internal/lib/sl"
	"github.com/magabrotheeeer/accountable/internal/models"
	"github.com/magabrotheeeer/accountable/internal/session"
	"github.com/magabrotheeeer/accountable/internal/shell/api"
	"github.com/magabrotheeeer/accountable/internal/shell/store"
)

// errOffline — команда требует настроенного API.
var errOffline = errors.New("backend is not configured, run: setup <url> [key]")

const helpText = `commands:
  go <path>                    open a page (/, /pricing, /blog/<id>, /setup, /auth, /dashboard, /admin)
  whoami                       show current identity
  signin <email> <password>    sign in
  signup <email> <password>    create an account
  signout                      sign out
  admin <user> <password>      enter the admin panel
  tasks                        list dashboard tasks
  add <RFC3339 time> <title>   schedule a task
  subscribe <BASIC|PRO>        choose a plan
  topup <calls>                buy extra calls
  stats                        show admin statistics
  queue                        list tasks of all users (admin)
  verify <task id> [notes]     mark a task verified (admin)
  pricing                      show plans
  blog [id]                    list posts or read one
  setup <url> [key]            save backend address, key is discovered when omitted
  disconnect                   forget saved backend address
  quit                         exit
`

// repl читает команды построчно до конца ввода, quit или отмены ctx.
func (a *App) repl(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(a.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := a.exec(ctx, line); quit {
				return nil
			}
		}
	}
}

// exec выполняет одну команду. Ошибки печатаются пользователю и не прерывают работу.
func (a *App) exec(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		a.printf("%s", helpText)
	case "go":
		err = a.navigate(ctx, args)
	case "whoami":
		a.printf("%s\n", describe(a.resolver.Current()))
	case "signin", "signup":
		err = a.authenticate(ctx, cmd, args)
	case "signout":
		a.resolver.SignOut(ctx)
		err = a.shell.Sync(ctx)
	case "admin":
		err = a.elevate(ctx, args)
	case "tasks":
		a.printTasks()
	case "add":
		err = a.addTask(ctx, args)
	case "subscribe":
		err = a.subscribe(ctx, args)
	case "topup":
		err = a.topUp(ctx, args)
	case "stats":
		a.printStats()
	case "queue":
		err = a.adminQueue(ctx)
	case "verify":
		err = a.verify(ctx, args)
	case "pricing":
		a.printPricing()
	case "blog":
		err = a.readBlog(ctx, args)
	case "setup":
		err = a.setup(ctx, args)
	case "disconnect":
		err = a.disconnect(ctx)
	default:
		err = fmt.Errorf("unknown command %q, try help", cmd)
	}
	if err != nil {
		a.printf("error: %s\n", err)
	}
	return false
}

func (a *App) navigate(ctx context.Context, args []string) error {
	path := "/"
	if len(args) > 0 {
		path = args[0]
	}
	a.shell.Navigate(path)
	return a.shell.Sync(ctx)
}

func (a *App) authenticate(ctx context.Context, cmd string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s <email> <password>", cmd)
	}
	do := a.resolver.SignIn
	if cmd == "signup" {
		do = a.resolver.SignUp
	}
	if _, err := do(ctx, args[0], args[1]); err != nil {
		if errors.Is(err, session.ErrUnauthorized) {
			return errors.New("invalid email or password")
		}
		return err
	}
	a.shell.Navigate("/dashboard")
	return a.shell.Sync(ctx)
}

func (a *App) elevate(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: admin <user> <password>")
	}
	creds := session.Credentials{Username: args[0], Password: args[1]}
	if _, err := a.resolver.ElevateToAdmin(ctx, creds); err != nil {
		return errors.New("invalid admin credentials")
	}
	a.shell.Navigate("/admin")
	return a.shell.Sync(ctx)
}

// userToken возвращает токен вошедшего пользователя при настроенном API.
func (a *App) userToken() (string, error) {
	if a.api == nil {
		return "", errOffline
	}
	id := a.resolver.Current()
	if !id.IsUser() || id.User.Token == "" {
		return "", errors.New("sign in first")
	}
	return id.User.Token, nil
}

// adminSession возвращает реквизиты admin RPC текущей идентичности.
func (a *App) adminSession() (identity.AdminSession, error) {
	if a.api == nil {
		return identity.AdminSession{}, errOffline
	}
	id := a.resolver.Current()
	switch {
	case id.IsAdminSession():
		return *id.Admin, nil
	case id.IsUser() && id.User.IsAdmin:
		return identity.AdminSession{Token: id.User.Token}, nil
	}
	return identity.AdminSession{}, errors.New("admin access required")
}

func (a *App) printTasks() {
	data := a.shell.Dashboard()
	if data.UpdatedAt.IsZero() {
		a.printf("open the dashboard first: go /dashboard\n")
		return
	}
	if data.Demo {
		a.printf("(demo data)\n")
	}
	if len(data.Tasks) == 0 {
		a.printf("no tasks yet\n")
	}
	for _, t := range data.Tasks {
		a.printf("%-4s %-9s %s  %s\n", t.ID, t.Status, t.ScheduledAt.Format(time.DateTime), t.Title)
	}
}

func (a *App) addTask(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: add <RFC3339 time> <title>")
	}
	token, err := a.userToken()
	if err != nil {
		return err
	}
	task, err := a.api.CreateTask(ctx, token, models.DummyTask{
		ScheduledAt: args[0],
		Title:       strings.Join(args[1:], " "),
	})
	if err != nil {
		return err
	}
	a.printf("task %s scheduled for %s\n", task.ID, task.ScheduledAt.Format(time.DateTime))
	return nil
}

func (a *App) subscribe(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: subscribe <BASIC|PRO>")
	}
	token, err := a.userToken()
	if err != nil {
		return err
	}
	r, err := a.api.Subscribe(ctx, token, models.Tier(strings.ToUpper(args[0])))
	if err != nil {
		return err
	}
	a.printf("subscribed to %s, charged $%.2f, %d calls left\n", r.Profile.Tier, float64(r.AmountCents)/100, r.Profile.CallsRemaining)
	a.resolver.Refresh(ctx)
	return nil
}

func (a *App) topUp(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: topup <calls>")
	}
	calls, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("calls must be a number: %w", err)
	}
	token, err := a.userToken()
	if err != nil {
		return err
	}
	r, err := a.api.TopUp(ctx, token, calls)
	if err != nil {
		return err
	}
	a.printf("charged $%.2f, %d calls left\n", float64(r.AmountCents)/100, r.Profile.CallsRemaining)
	a.resolver.Refresh(ctx)
	return nil
}

func (a *App) printStats() {
	data := a.shell.AdminStats()
	if data.UpdatedAt.IsZero() {
		a.printf("open the admin panel first: go /admin\n")
		return
	}
	if data.Demo {
		a.printf("(demo data)\n")
	}
	s := data.Stats
	a.printf("subscribers: %d\nmrr: $%d\nconversion: %d%%\n", s.TotalUsers, s.MRR, s.ConversionRate)
	for _, r := range s.RecentSignups {
		a.printf("  %-30s %-5s %s\n", r.Email, r.Tier, r.CreatedAt.Format(time.DateOnly))
	}
}

func (a *App) adminQueue(ctx context.Context) error {
	creds, err := a.adminSession()
	if err != nil {
		return err
	}
	tasks, err := a.api.AdminTasks(ctx, creds)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		a.printf("%s  %-9s %s  %s (%s, %d calls)\n", t.ID, t.Status, t.ScheduledAt.Format(time.DateTime), t.Title, t.OwnerEmail, t.OwnerCalls)
	}
	return nil
}

func (a *App) verify(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: verify <task id> [notes]")
	}
	creds, err := a.adminSession()
	if err != nil {
		return err
	}
	task, err := a.api.VerifyTask(ctx, creds, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	a.printf("task %s is %s\n", task.ID, task.Status)
	return nil
}

func (a *App) printPricing() {
	for _, p := range models.Plans() {
		a.printf("%-5s %-22s $%d/month, %d calls\n", p.Tier, p.Name, p.PriceMonthly, p.Calls)
		for _, f := range p.Features {
			a.printf("        - %s\n", f)
		}
	}
	a.printf("extra calls: $%.2f each\n", float64(models.TopUpPriceCents)/100)
}

func (a *App) readBlog(ctx context.Context, args []string) error {
	if len(args) == 0 {
		posts := a.blog.List()
		if a.api != nil {
			remote, err := a.api.Blog(ctx)
			if err != nil {
				a.log.Warn("failed to load blog, showing built-in posts", sl.Err(err))
			} else {
				posts = remote
			}
		}
		for _, p := range posts {
			a.printf("%d. %s (%s, %s)\n", p.ID, p.Title, p.Date, p.ReadTime)
		}
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("post id must be a number: %w", err)
	}
	a.shell.Navigate("/blog/" + args[0])
	if err := a.shell.Sync(ctx); err != nil {
		return err
	}
	var post models.BlogPost
	if a.api != nil {
		post, err = a.api.BlogPost(ctx, id)
	} else {
		post, err = a.blog.Get(id)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}
	a.printf("%s\n%s\n\n%s\n", post.Title, post.Date, post.HTML)
	return nil
}

func (a *App) setup(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: setup <url> [key]")
	}
	cfg := store.BackendConfig{URL: args[0]}
	if len(args) > 1 {
		cfg.Key = args[1]
	} else {
		a.printf("checking server for keys...\n")
		found, err := api.Discover(ctx, args[0])
		if err != nil {
			return fmt.Errorf("auto-discovery failed, pass the key explicitly: %w", err)
		}
		cfg = found
		a.printf("keys found automatically\n")
	}
	if err := a.store.SaveBackendConfig(ctx, cfg); err != nil {
		return err
	}
	a.printf("backend saved, restart the shell to connect\n")
	return nil
}

func (a *App) disconnect(ctx context.Context) error {
	if err := a.store.ClearBackendConfig(ctx); err != nil {
		return err
	}
	a.printf("backend forgotten, restart the shell to use demo mode\n")
	return nil
}

// describe — короткое описание идентичности для вывода.
func describe(id identity.Identity) string {
	switch {
	case id.IsUser():
		return fmt.Sprintf("%s (%s, %d calls)", id.User.Email, id.User.Tier, id.User.CallsRemaining)
	case id.IsAdminSession():
		if id.Admin.Username != "" {
			return "admin " + id.Admin.Username
		}
		return "admin"
	}
	return "anonymous"
}
