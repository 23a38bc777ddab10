package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/navguard/internal/data"
	domainauth "github.com/target/navguard/internal/domain/auth"
	"github.com/target/navguard/internal/domain/nav"
	"github.com/target/navguard/internal/service"
)

type routesOptions struct {
	Subject string
	RawJSON bool
	Timeout time.Duration
}

func parseRoutesFlags(args []string) (routesOptions, error) {
	fs := flag.NewFlagSet("routes", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := routesOptions{}
	fs.StringVar(&opts.Subject, "subject", "", "IdP subject of the user (required)")
	fs.BoolVar(&opts.RawJSON, "json", false, "Print the route table as returned by /api/getRouters")
	fs.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Maximum duration to wait for the lookup")

	if err := fs.Parse(args); err != nil {
		return routesOptions{}, err
	}
	opts.Subject = strings.TrimSpace(opts.Subject)
	if opts.Subject == "" {
		return routesOptions{}, errors.New("--subject is required")
	}
	if opts.Timeout <= 0 {
		return routesOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runRoutes(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoutesFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		identity, routes, err := generateRoutes(ctx, db, opts.Subject, cmdCtx)
		if err != nil {
			return err
		}
		if opts.RawJSON {
			return printRoutesJSON(os.Stdout, routes)
		}
		return printRouteTable(os.Stdout, identity, routes)
	})
}

func generateRoutes(
	ctx context.Context,
	db *sql.DB,
	subject string,
	cmdCtx *commandContext,
) (domainauth.Identity, []nav.Route, error) {
	identities := service.NewIdentityService(service.IdentityServiceOptions{
		Users:  data.NewUserRepo(db),
		Logger: cmdCtx.Logger,
	})
	identity, err := identities.IdentityForSubject(ctx, subject)
	if err != nil {
		return domainauth.Identity{}, nil, fmt.Errorf("load identity: %w", err)
	}

	routeSvc, err := service.NewRouteService(service.RouteServiceOptions{
		Menus:  data.NewMenuRepo(db),
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return domainauth.Identity{}, nil, err
	}
	routes, err := routeSvc.GenerateRoutes(ctx, identity)
	if err != nil {
		return domainauth.Identity{}, nil, fmt.Errorf("generate routes: %w", err)
	}
	return identity, routes, nil
}

func printRoutesJSON(w io.Writer, routes []nav.Route) error {
	if routes == nil {
		routes = []nav.Route{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(routes)
}

func printRouteTable(w io.Writer, identity domainauth.Identity, routes []nav.Route) error {
	if err := writef(w, "User: %s (id %d)\nRoles: %s\nPermissions: %d\n\n",
		identity.User.UserName, identity.User.ID,
		strings.Join(identity.Roles, ", "), len(identity.Permissions),
	); err != nil {
		return err
	}
	if len(routes) == 0 {
		return writeln(w, "No routes generated.")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "PATH\tNAME\tCOMPONENT\tTITLE\tFLAGS\n"); err != nil {
		return err
	}
	if err := writeRouteRows(tw, routes, ""); err != nil {
		return err
	}
	return tw.Flush()
}

func writeRouteRows(w io.Writer, routes []nav.Route, parent string) error {
	for _, rt := range routes {
		full := rt.Path
		if !nav.IsExternal(rt.Path) {
			full = nav.JoinPath(parent, rt.Path)
		}
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\n",
			full, dash(rt.Name), dash(rt.Component), dash(rt.Meta.Title), routeFlags(rt),
		); err != nil {
			return err
		}
		if err := writeRouteRows(w, rt.Children, full); err != nil {
			return err
		}
	}
	return nil
}

func routeFlags(rt nav.Route) string {
	var flags []string
	if nav.IsExternal(rt.Path) {
		flags = append(flags, "external")
	}
	if rt.Hidden {
		flags = append(flags, "hidden")
	}
	if rt.Meta.NoCache {
		flags = append(flags, "no-cache")
	}
	if rt.Redirect != "" && rt.Redirect != service.RedirectNone {
		flags = append(flags, "redirect="+rt.Redirect)
	}
	return dash(strings.Join(flags, ","))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
