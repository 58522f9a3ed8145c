/*
Package rewrite turns an untrusted HTML document into the form loaded into a
view's sandboxed frame.

Rewrite applies, in order:

 1. parse the document
 2. add the mcp-root class to <html> and <body>
 3. replace link[href], script[src], img[src], source[src], audio[src] and
    video[src] whose URL is ui:// or http(s) with loader placeholders
    (mcp-link, mcp-script, ...) that keep every original attribute and carry
    the absolute URL; placeholders from <head> get data-mcp-head="true",
    rejected remote URLs get data-mcp-blocked="true"
 4. create <head> if missing
 5. insert <style data-mcp="theme"> as the first child of <head>
 6. insert the optional theme link right after it, tagged layer="mcp-user"
 7. insert <script data-mcp="bootstrap"> after the theme style or link
 8. serialize, defaulting the doctype to <!doctype html>

Elements whose URL uses an ignored scheme (data, blob, mailto, tel,
javascript, about), any other non-mediated scheme, or a relative URL that
cannot be resolved are left as they are.
*/
package rewrite
