package compiler

// nativeRunnerJS is the fixed harness emitted after the module byte array.
// It instantiates the WASM module once and installs __easyjs_native_call,
// which marshals arguments by type and invokes the exported function.
const nativeRunnerJS = `let __easyjs_native_instance = null;
function __easyjs_native_init() {
    if (__easyjs_native_instance === null) {
        const __easyjs_native_mod = new WebAssembly.Module(__easyjs_native_module);
        __easyjs_native_instance = new WebAssembly.Instance(__easyjs_native_mod, {});
    }
    return __easyjs_native_instance;
}
function __easyjs_native_read_string(instance, ptr) {
    const view = new DataView(instance.exports.memory.buffer);
    const len = view.getUint32(ptr, true);
    const bytes = new Uint8Array(instance.exports.memory.buffer, ptr + 4, len);
    let out = '';
    for (let i = 0; i < len; i++) {
        out += String.fromCharCode(bytes[i]);
    }
    return out;
}
function __easyjs_native_write_string(instance, value) {
    const str = String(value);
    const ptr = instance.exports.__str_alloc(str.length);
    instance.exports.__str_store_len(ptr, str.length);
    for (let i = 0; i < str.length; i++) {
        instance.exports.__str_store_byte(ptr, 4 + i, str.charCodeAt(i) & 0xff);
    }
    return ptr;
}
function __easyjs_native_call(name, param_types, result_types, ...args) {
    const instance = __easyjs_native_init();
    const marshalled = args.map(function (arg, i) {
        if (param_types[i] === 'string') {
            return __easyjs_native_write_string(instance, arg);
        }
        if (param_types[i] === 'bool') {
            return arg ? 1 : 0;
        }
        return arg;
    });
    const result = instance.exports[name](...marshalled);
    if (result_types[0] === 'string') {
        return __easyjs_native_read_string(instance, result);
    }
    if (result_types[0] === 'bool') {
        return result !== 0;
    }
    return result;
}
`
