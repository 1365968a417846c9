// Package discovery implements mDNS/DNS-SD discovery of back units that
// expose their serial link over a TCP bridge.
//
// # Bridge Discovery (_doorlock._tcp)
//
// A back unit started with a TCP bridge advertises one instance of
// _doorlock._tcp. Instance name format: DOORLOCK-<unit-id prefix>.
// TXT records include: id (unit ID), ver (protocol version), and optionally
// DN (unit name) and baud (baud rate of the serial line behind the bridge).
//
// Front units browse for the service, aggregate addresses reported on
// several interfaces, and dial the first reachable address.
package discovery
