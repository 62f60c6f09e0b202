// Package agent implements the tool-calling agent loop.
//
// A Loop owns a model, a tool registry and a rendered system prompt. Each
// Run starts a fresh transcript of [system, user(task)] and steps:
//
//  1. compress the transcript when it outgrew its token budget
//  2. call the model once
//  3. parse the reply for a <tool> region
//  4. execute the tool and append its <result>, or finish with the reply
//
// Runs end in one of two terminal states. StateDone carries the final
// answer. StateErrored carries an "Error: ..." text for an exhausted step
// budget, a failed model call or a cancelled context. Run never panics and
// never returns an error value; configuration errors surface from NewLoop.
//
// Progress is reported through core.Observer and logging.Logger. Neither
// affects control flow.
package agent
