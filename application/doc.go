/*
Package application wires the certificate packages into the issuing and
verification services run by the certree executable.

Config

Config holds the settings of an installation: where records are
stored, which hasher seals them, which ledger anchors their roots and
where document metadata is written. It is read from and written to
TOML (the default) or YAML files.

Logger

Logger is the structured logger shared by the services and the server.

Issuer

Issuer turns ingested rows into sealed records. Sealing runs on a pool
of workers; storing, anchoring and writing metadata run in input order.

Verifier

Verifier answers verification queries. It reads proofs from the record
store and trusted roots from the ledger, never from the record itself.
*/
package application
