// Package config holds devhost settings and the Route intent type.
//
// Settings are resolved in layers, each overriding the previous one:
//   - platform defaults from the platform package
//   - ~/.config/devhost/config.yaml (or the --config path)
//   - a .env file in the working directory
//   - DEVHOST_* environment variables
//
// Example config.yaml:
//
//	vhost_conf: /etc/apache2/sites-available/devhost.conf
//	hosts_file: /etc/hosts
//	server_root: /etc/apache2
//	www_dir: /var/www
//	address: 127.0.0.1
//	port: 80
//	ssl_provider: openssl
//	create_root: true
//	audit_log: /var/log/devhost/audit.log
//
// # Routes
//
// A Route is never stored here. NewRoute validates RouteOptions once,
// before any file is touched, and every later stage trusts the result:
//
//	route, err := config.NewRoute(config.RouteOptions{
//	    Hostname: "dev.local",
//	    Port:     cfg.Port,
//	    Target:   cfg.DefaultRoot("dev.local"),
//	})
//
// Exactly one of document-root mode (Target) and balancer mode (Members) is
// active on a valid route.
//
// # Thread Safety
//
// Config operations are NOT thread-safe. Callers must implement their own
// synchronization if accessing Config from multiple goroutines.
package config
