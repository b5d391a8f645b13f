package cli

import "fmt"

func printUsage() {
	fmt.Print(`arbiter - LLM evaluation batch runner

Usage:
  arbiter run [flags]     run an evaluation batch against a generation gateway
  arbiter parse [file]    parse a judge response and print the verdict as JSON
  arbiter help            show this message

Run flags:
  --gateway-url=URL              websocket gateway endpoint (or ARBITER_GATEWAY_URL)
  --catalog=PATH                 model catalog YAML (or ARBITER_CATALOG, default models.yaml)
  --criteria=PATH                grading criteria JSONL file (required)
  --prompt=TEXT                  task prompt sent to the test model
  --prompt-file=PATH             read the task prompt from a file
  --max-attempts=N               attempt budget for the batch (default 10)
  --goal=N                       stop once this many wins are recorded (default 1)
  --test-model=NAME              catalog model used for generation
  --judge-model=NAME             catalog model used for judging
  --judge-system-prompt-file=P   override the judge system prompt
  --output=FORMAT                report format, markdown or json (default markdown)
  --audit-db=PATH                persist progress events to a sqlite database
  --redis-addr=ADDR              publish progress events to a redis stream
  --redis-stream=NAME            redis stream name (default arbiter:events)
  --wave-delay-ms=N              delay between scheduling waves in milliseconds
  --win-on-zero=BOOL             treat score 0 as a win (default true)

Parse flags:
  --file=PATH                    judge response file, "-" or omitted reads stdin
`)
}
