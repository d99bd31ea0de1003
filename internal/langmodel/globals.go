package langmodel

// ambientGlobals are names provided by the standard library, DOM and Node
// typings that resolve without an import.
var ambientGlobals = []string{
	// values
	"undefined", "NaN", "Infinity", "globalThis", "arguments", "this",
	"Object", "Function", "Array", "String", "Number", "Boolean", "Symbol", "BigInt",
	"Math", "JSON", "Date", "RegExp", "Error", "EvalError", "RangeError",
	"ReferenceError", "SyntaxError", "TypeError", "URIError", "AggregateError",
	"Promise", "Proxy", "Reflect", "Map", "Set", "WeakMap", "WeakSet", "WeakRef",
	"FinalizationRegistry", "ArrayBuffer", "SharedArrayBuffer", "DataView", "Atomics",
	"Int8Array", "Uint8Array", "Uint8ClampedArray", "Int16Array", "Uint16Array",
	"Int32Array", "Uint32Array", "Float32Array", "Float64Array", "BigInt64Array",
	"BigUint64Array", "Intl",
	"parseInt", "parseFloat", "isNaN", "isFinite", "encodeURI", "encodeURIComponent",
	"decodeURI", "decodeURIComponent", "escape", "unescape", "eval",
	"console", "setTimeout", "clearTimeout", "setInterval", "clearInterval",
	"setImmediate", "clearImmediate", "queueMicrotask", "structuredClone",
	"fetch", "Request", "Response", "Headers", "FormData", "URL", "URLSearchParams",
	"AbortController", "AbortSignal", "Blob", "File", "FileReader",
	"TextEncoder", "TextDecoder", "ReadableStream", "WritableStream", "TransformStream",
	"Event", "EventTarget", "CustomEvent", "crypto", "performance", "atob", "btoa",
	"window", "document", "navigator", "location", "history", "localStorage",
	"sessionStorage", "alert", "confirm", "prompt", "requestAnimationFrame",
	"cancelAnimationFrame", "HTMLElement", "Element", "Node", "NodeList",
	"MouseEvent", "KeyboardEvent", "WebSocket", "Worker", "XMLHttpRequest",
	"process", "Buffer", "require", "module", "exports", "__dirname", "__filename",
	"global", "React", "JSX",
	// types
	"Partial", "Required", "Readonly", "Record", "Pick", "Omit", "Exclude",
	"Extract", "NonNullable", "Parameters", "ConstructorParameters", "ReturnType",
	"InstanceType", "ThisParameterType", "OmitThisParameter", "ThisType",
	"Awaited", "Uppercase", "Lowercase", "Capitalize", "Uncapitalize",
	"PromiseLike", "ArrayLike", "ReadonlyArray", "ReadonlyMap", "ReadonlySet",
	"Iterable", "Iterator", "IterableIterator", "AsyncIterable", "AsyncIterator",
	"AsyncIterableIterator", "Generator", "AsyncGenerator", "PropertyKey",
	"PropertyDescriptor", "TemplateStringsArray", "ArrayBufferLike", "NodeJS",
}
