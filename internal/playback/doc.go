// Package playback runs the background agent that keeps a Spotify Connect device online.
//
// sptty does not speak the Connect protocol itself. A [Connector] is handed a bearer token and opens a session;
// [ExecConnector] does so by running an external implementation (librespot by default) with the token in its
// environment. [Agent] ties token acquisition to the connector.
//
// [Unit] manages the systemd user unit that runs "sptty agent run" in the background.
package playback
