/*
Package policy classifies resource references found in untrusted documents and
decides how each one may be loaded.

# Classification

Classify trims the raw value, drops empty and fragment-only references, keeps
values with an explicit scheme as they are and resolves schemeless values
against a base URL. Decide then maps a Reference to an Action:

  - ActionIgnore: data, blob, mailto, tel, javascript and about URLs stay untouched
  - ActionLogical: ui:// references are fetched through the host resolver
  - ActionRemote: http(s) references the allow predicate accepts
  - ActionBlocked: http(s) references the allow predicate rejects
  - ActionUnsupported: any other scheme

# Allow predicates

An Allower decides remote access. OriginList matches entries containing "://"
against the URL origin and other entries against the hostname; both accept
doublestar wildcards ("*.example.com"). CedarAllower evaluates a Cedar policy
set with the URL's scheme, host, origin and path in the request context.
Select combines an explicit predicate with a static list; the predicate wins,
and with neither every remote URL is rejected.
*/
package policy
