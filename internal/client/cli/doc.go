// Package cli implements the taskerid command line client.
//
//	taskerid-cli [-s url] [-g addr] [-p http|grpc] [-timeout d] <command> [flags]
//
// Commands:
//
//	register         -name -email -username
//	register-tasker  -name -email -username -skills -experience -rate -category -category-id
//	login            -u <username or email>
//	whoami           [-token t]
//
// Passwords are read from the terminal without echo, or as one line from
// standard input when it is not a terminal.
package cli
