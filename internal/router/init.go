package router

import (
	"github.com/bislerium/blog-backend/internal/application"
	"github.com/bislerium/blog-backend/internal/container"
	pginfra "github.com/bislerium/blog-backend/internal/infrastructure/postgres"
	handlers "github.com/bislerium/blog-backend/internal/interface/http"
	"github.com/bislerium/blog-backend/internal/router/modules"
	"github.com/bislerium/blog-backend/pkg/mailer"
)

type accountDeps struct {
	Account *handlers.AccountHandler
	Auth    *handlers.AuthHandler
}

type blogDeps struct {
	Service *application.BlogService
	Handler *handlers.BlogHandler
}

func buildBlogDeps() blogDeps {
	cfg := container.GetConfig()
	repo := pginfra.NewBlogRepository(container.GetPGPool())
	service := application.NewBlogService(repo, container.GetLogger(), container.GetES(), cfg.ESBlogsIndex)
	handler := handlers.NewBlogHandler(service, container.GetLogger())
	return blogDeps{Service: service, Handler: handler}
}

func buildAccountDeps(blogs *application.BlogService) accountDeps {
	cfg := container.GetConfig()
	repo := pginfra.NewUserRepository(container.GetPGPool())
	otp := application.NewRedisOTPService(container.GetRedis(), cfg.OTPTTL)

	// With RabbitMQ configured, mail goes through the queue and the email
	// worker delivers it; otherwise Mailgun is called inline so delivery
	// failures surface to the caller.
	var email application.EmailSender
	if pub := container.GetRabbitPub(); pub != nil {
		email = mailer.NewQueueSender(pub)
	} else {
		email = container.GetMailgun()
	}

	service := application.NewAccountService(
		repo,
		otp,
		email,
		blogs,
		container.GetStorage(),
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
	)

	account := handlers.NewAccountHandler(service, container.GetLogger())
	auth := handlers.NewAuthHandler(service, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	return accountDeps{Account: account, Auth: auth}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	blog := buildBlogDeps()
	account := buildAccountDeps(blog.Service)

	r.Add(modules.NewAccountModule(account.Account, account.Auth, container.GetJWT()))
	r.Add(modules.NewBlogModule(blog.Handler, container.GetJWT()))
}
