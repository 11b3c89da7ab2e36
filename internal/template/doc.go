// Package template renders Apache <VirtualHost> blocks from embedded Go
// templates.
//
// Two templates exist, one per route mode:
//
//	apache/docroot.tmpl   DocumentRoot + <Directory> grant
//	apache/balancer.tmpl  mod_proxy_balancer cluster with one BalancerMember per member
//
// Both emit ServerName, any ServerAlias lines, per-host ErrorLog and
// CustomLog under the server's logs/ directory and, for SSL routes, the
// SSLEngine and certificate directives.
//
// # Rendering
//
//	block, err := template.Render(route, cert)
//
// The block ends with exactly one newline and contains no blank lines, so
// the vhostconf package can append and later excise it byte-for-byte.
//
// # Custom Functions
//
//   - cluster: balancer cluster name for a hostname (<host>_cluster)
//   - member: prefixes scheme-less members with http://
package template
