package app

import (
	"fmt"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/acceptreturn"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/addbook"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/addcategory"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/approverequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/authenticateuser"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/cancelrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/issuebookdirect"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/registermember"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/registeruser"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/rejectrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/removebook"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/removemember"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/settlefine"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/submitrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/updatebook"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/fineestimates"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/ledgeraudit"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/overdueissues"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell/observable"
)

// Settings carries everything the handlers share. Zero values fall back to defaults:
// an in-process locker, core.DefaultCheckoutRules, core.DefaultFinePolicy, bcrypt at its default cost
// and no observability.
type Settings struct {
	Locker           shell.Locker
	Rules            core.CheckoutRules
	Policy           core.FinePolicy
	Passwords        shell.BcryptHasher
	RetryOptions     []shell.RetryOption
	MetricsCollector shell.MetricsCollector
	TracingCollector shell.TracingCollector
	ContextualLogger shell.ContextualLogger
}

// HandlerBundle holds one observable handler per operation.
type HandlerBundle struct {
	// Requests.
	SubmitRequest  shell.CoreCommandHandler[submitrequest.Command]
	ApproveRequest shell.CoreCommandHandler[approverequest.Command]
	RejectRequest  shell.CoreCommandHandler[rejectrequest.Command]
	CancelRequest  shell.CoreCommandHandler[cancelrequest.Command]

	// Issues.
	IssueBookDirect shell.CoreCommandHandler[issuebookdirect.Command]
	AcceptReturn    shell.CoreCommandHandler[acceptreturn.Command]
	SettleFine      shell.CoreCommandHandler[settlefine.Command]

	// Catalog and people.
	AddBook          shell.CoreCommandHandler[addbook.Command]
	UpdateBook       shell.CoreCommandHandler[updatebook.Command]
	RemoveBook       shell.CoreCommandHandler[removebook.Command]
	AddCategory      shell.CoreCommandHandler[addcategory.Command]
	RegisterMember   shell.CoreCommandHandler[registermember.Command]
	RemoveMember     shell.CoreCommandHandler[removemember.Command]
	RegisterUser     shell.CoreCommandHandler[registeruser.Command]
	AuthenticateUser shell.CoreCommandHandler[authenticateuser.Command]

	// Reports.
	FineEstimates shell.CoreQueryHandler[fineestimates.Query, fineestimates.FineEstimates]
	OverdueIssues shell.CoreQueryHandler[overdueissues.Query, overdueissues.OverdueIssues]
	LedgerAudit   shell.CoreQueryHandler[ledgeraudit.Query, ledgeraudit.Audit]

	// Policy is the fine policy the handlers were built with.
	Policy core.FinePolicy
}

// NewHandlerBundle creates all handlers on top of store.
func NewHandlerBundle(store shell.LedgerStore, settings Settings) (*HandlerBundle, error) {
	if store == nil {
		return nil, shell.ErrNilLedgerStore
	}

	if settings.Locker == nil {
		settings.Locker = shell.NewMutexLocker()
	}

	if settings.Policy == nil {
		settings.Policy = core.DefaultFinePolicy()
	}

	if settings.Rules.BorrowLimit == 0 {
		settings.Rules = core.DefaultCheckoutRules()
	}

	if settings.Passwords.Cost == 0 {
		settings.Passwords = shell.NewBcryptHasher()
	}

	b := &HandlerBundle{Policy: settings.Policy}
	opts := []shell.HandlerOption{shell.WithLocker(settings.Locker), shell.WithRetryOptions(settings.RetryOptions...)}

	var err error

	if b.SubmitRequest, err = wrapCommand[submitrequest.Command](settings, fromConstructor(submitrequest.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create SubmitRequest handler: %w", err)
	}

	if b.ApproveRequest, err = wrapCommand[approverequest.Command](settings, fromConstructor(approverequest.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create ApproveRequest handler: %w", err)
	}

	if b.RejectRequest, err = wrapCommand[rejectrequest.Command](settings, fromConstructor(rejectrequest.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create RejectRequest handler: %w", err)
	}

	if b.CancelRequest, err = wrapCommand[cancelrequest.Command](settings, fromConstructor(cancelrequest.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create CancelRequest handler: %w", err)
	}

	issueDirect, err := issuebookdirect.NewCommandHandler(store, settings.Rules, settings.Policy, opts...)
	if b.IssueBookDirect, err = wrapCommand[issuebookdirect.Command](settings, fromConstructor(issueDirect, err)); err != nil {
		return nil, fmt.Errorf("failed to create IssueBookDirect handler: %w", err)
	}

	returns, err := acceptreturn.NewCommandHandler(store, settings.Policy, opts...)
	if b.AcceptReturn, err = wrapCommand[acceptreturn.Command](settings, fromConstructor(returns, err)); err != nil {
		return nil, fmt.Errorf("failed to create AcceptReturn handler: %w", err)
	}

	if b.SettleFine, err = wrapCommand[settlefine.Command](settings, fromConstructor(settlefine.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create SettleFine handler: %w", err)
	}

	if b.AddBook, err = wrapCommand[addbook.Command](settings, fromConstructor(addbook.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create AddBook handler: %w", err)
	}

	if b.UpdateBook, err = wrapCommand[updatebook.Command](settings, fromConstructor(updatebook.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create UpdateBook handler: %w", err)
	}

	if b.RemoveBook, err = wrapCommand[removebook.Command](settings, fromConstructor(removebook.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create RemoveBook handler: %w", err)
	}

	if b.AddCategory, err = wrapCommand[addcategory.Command](settings, fromConstructor(addcategory.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create AddCategory handler: %w", err)
	}

	if b.RegisterMember, err = wrapCommand[registermember.Command](settings, fromConstructor(registermember.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create RegisterMember handler: %w", err)
	}

	if b.RemoveMember, err = wrapCommand[removemember.Command](settings, fromConstructor(removemember.NewCommandHandler(store, opts...))); err != nil {
		return nil, fmt.Errorf("failed to create RemoveMember handler: %w", err)
	}

	users, err := registeruser.NewCommandHandler(store, settings.Passwords, opts...)
	if b.RegisterUser, err = wrapCommand[registeruser.Command](settings, fromConstructor(users, err)); err != nil {
		return nil, fmt.Errorf("failed to create RegisterUser handler: %w", err)
	}

	logins, err := authenticateuser.NewCommandHandler(store, settings.Passwords, opts...)
	if b.AuthenticateUser, err = wrapCommand[authenticateuser.Command](settings, fromConstructor(logins, err)); err != nil {
		return nil, fmt.Errorf("failed to create AuthenticateUser handler: %w", err)
	}

	fines, err := fineestimates.NewQueryHandler(store, settings.Policy)
	if b.FineEstimates, err = wrapQuery[fineestimates.Query, fineestimates.FineEstimates](settings, fromConstructor(fines, err)); err != nil {
		return nil, fmt.Errorf("failed to create FineEstimates handler: %w", err)
	}

	if b.OverdueIssues, err = wrapQuery[overdueissues.Query, overdueissues.OverdueIssues](settings, fromConstructor(overdueissues.NewQueryHandler(store))); err != nil {
		return nil, fmt.Errorf("failed to create OverdueIssues handler: %w", err)
	}

	if b.LedgerAudit, err = wrapQuery[ledgeraudit.Query, ledgeraudit.Audit](settings, fromConstructor(ledgeraudit.NewQueryHandler(store))); err != nil {
		return nil, fmt.Errorf("failed to create LedgerAudit handler: %w", err)
	}

	return b, nil
}

// constructed carries a constructor's two return values into the generic wrappers.
type constructed[H any] struct {
	handler H
	err     error
}

func fromConstructor[H any](handler H, err error) constructed[H] {
	return constructed[H]{handler: handler, err: err}
}

func wrapCommand[C shell.Command, H shell.CoreCommandHandler[C]](
	settings Settings,
	c constructed[H],
) (shell.CoreCommandHandler[C], error) {
	if c.err != nil {
		return nil, c.err
	}

	return observable.NewCommandWrapper[C](
		c.handler,
		observable.WithCommandMetrics[C](settings.MetricsCollector),
		observable.WithCommandTracing[C](settings.TracingCollector),
		observable.WithCommandContextualLogging[C](settings.ContextualLogger),
	)
}

func wrapQuery[Q shell.Query, R any, H shell.CoreQueryHandler[Q, R]](
	settings Settings,
	c constructed[H],
) (shell.CoreQueryHandler[Q, R], error) {
	if c.err != nil {
		return nil, c.err
	}

	return observable.NewQueryWrapper[Q, R](
		c.handler,
		observable.WithQueryMetrics[Q, R](settings.MetricsCollector),
		observable.WithQueryTracing[Q, R](settings.TracingCollector),
		observable.WithQueryContextualLogging[Q, R](settings.ContextualLogger),
	)
}
