// Command hybridrec 是离线推荐工具：构建协同过滤 / 内容相似度矩阵，查询相似商品、混合推荐，
// 导出邻居列表并计算离线指标。
//
//	hybridrec similar  -config hybridrec.yaml -item 355908 -k 5
//	hybridrec content  -item 355908
//	hybridrec hybrid   -item 355908 -alpha 0.7
//	hybridrec pipeline -item 355908
//	hybridrec evaluate -k 10
//	hybridrec publish
//	hybridrec metrics  -recs 101,202,303,404,505 -actual 202,303,777 -k 5
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rushteam/hybridrec/config"
	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/engine"
	"github.com/rushteam/hybridrec/evaluation"
	"github.com/rushteam/hybridrec/hybrid"
	"github.com/rushteam/hybridrec/pkg/logging"
	"github.com/rushteam/hybridrec/similarity"
)

const usage = `usage: hybridrec <command> [flags]

commands:
  similar    collaborative-filtering neighbours of an item
  content    content (TF-IDF) neighbours of an item
  hybrid     weighted blend of both matrices
  pipeline   run the configured recall / filter / rerank pipeline
  evaluate   holdout precision / recall / NDCG over the interaction log
  publish    export top-k neighbour lists to the configured store
  metrics    score a recommendation list against a relevant set

run "hybridrec <command> -h" for flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logging.Error().Err(err).Msg("hybridrec failed")
		os.Exit(1)
	}
}

// options 是各子命令共用的参数。
type options struct {
	configPath  string
	item        string
	k           int
	alpha       float64
	recommender string
	recs        string
	actual      string
	logLevel    string
	asJSON      bool
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return flag.ErrHelp
	}
	cmd, args := args[0], args[1:]

	var opts options
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "path to YAML config (defaults are used when empty)")
	fs.IntVar(&opts.k, "k", 0, "number of results (0 = config top_k)")
	fs.StringVar(&opts.logLevel, "log-level", "", "override log level")
	fs.BoolVar(&opts.asJSON, "json", false, "print JSON instead of text")
	switch cmd {
	case "similar", "content", "hybrid", "pipeline":
		fs.StringVar(&opts.item, "item", "", "query item id")
		if cmd == "hybrid" {
			fs.Float64Var(&opts.alpha, "alpha", -1, "blend weight in [0,1] (-1 = config alpha)")
		}
	case "evaluate":
		fs.StringVar(&opts.recommender, "recommender", "", "collaborative | content | hybrid | pipeline (empty = all)")
	case "publish":
	case "metrics":
		fs.StringVar(&opts.recs, "recs", "", "comma separated recommended ids, best first")
		fs.StringVar(&opts.actual, "actual", "", "comma separated relevant ids")
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd == "metrics" {
		return runMetrics(opts, out)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	ctx = logging.ContextWithNewRunID(ctx)
	logging.Ctx(ctx).Info().Str("command", cmd).Str("config", opts.configPath).Msg("starting")

	if (cmd == "similar" || cmd == "content" || cmd == "hybrid" || cmd == "pipeline") && opts.item == "" {
		return core.InvalidInput(core.ModuleHybrid, "-item is required")
	}

	model, err := engine.Build(ctx, cfg)
	if err != nil {
		return err
	}

	switch cmd {
	case "similar":
		return runSimilar(ctx, model, similarity.NameCollaborative, opts, out)
	case "content":
		return runSimilar(ctx, model, similarity.NameContent, opts, out)
	case "hybrid":
		return runHybrid(ctx, model, opts, out)
	case "pipeline":
		return runPipeline(ctx, model, opts, out)
	case "evaluate":
		return runEvaluate(ctx, model, opts, out)
	default:
		return runPublish(ctx, model, opts, out)
	}
}

func loadConfig(opts options) (*config.App, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logging.Init(cfg.Log)
	return cfg, nil
}

func runSimilar(ctx context.Context, m *engine.Model, matrix string, opts options, out io.Writer) error {
	res, err := m.Similar(ctx, matrix, opts.item, opts.k)
	if err != nil {
		return err
	}
	if opts.asJSON {
		return writeJSON(out, res)
	}
	printResult(out, fmt.Sprintf("items similar to %s (%s)", opts.item, matrix), res, nil)
	return nil
}

func runHybrid(ctx context.Context, m *engine.Model, opts options, out io.Writer) error {
	alpha := opts.alpha
	if alpha == -1 {
		alpha = m.Config().Model.Alpha
	}
	res, err := m.Hybrid(ctx, opts.item, alpha, opts.k)
	if err != nil {
		return err
	}
	if opts.asJSON {
		return writeJSON(out, res)
	}
	printResult(out, fmt.Sprintf("hybrid recommendations for %s (alpha=%g)", opts.item, alpha), res.Result, res.Components)
	return nil
}

func runPipeline(ctx context.Context, m *engine.Model, opts options, out io.Writer) error {
	kv, err := engine.OpenStore(m.Config().Store)
	if err != nil {
		return err
	}
	if kv != nil {
		defer kv.Close()
	}
	p, err := m.Pipeline(kv)
	if err != nil {
		return err
	}
	r, err := p.Recommend(ctx, opts.item)
	if err != nil {
		return err
	}
	res := core.Result{Query: opts.item, Items: r.Top(opts.k)}
	if opts.asJSON {
		return writeJSON(out, res)
	}
	printResult(out, fmt.Sprintf("pipeline %q for %s", p.Name, opts.item), res, nil)
	return nil
}

func runEvaluate(ctx context.Context, m *engine.Model, opts options, out io.Writer) error {
	names := []string{similarity.NameCollaborative, similarity.NameContent, "hybrid"}
	if opts.recommender != "" {
		names = []string{opts.recommender}
	}
	reports := make(map[string]evaluation.Report, len(names))
	for _, name := range names {
		sum, err := m.Evaluate(ctx, name, opts.k)
		if err != nil {
			return err
		}
		reports[name] = sum.Mean()
		if !opts.asJSON {
			fmt.Fprintf(out, "%-14s %s (evaluated=%d skipped=%d)\n", name, sum.Mean(), sum.Count, sum.Skipped)
		}
	}
	if opts.asJSON {
		return writeJSON(out, reports)
	}
	return nil
}

func runPublish(ctx context.Context, m *engine.Model, opts options, out io.Writer) error {
	kv, err := engine.OpenStore(m.Config().Store)
	if err != nil {
		return err
	}
	if kv == nil {
		return core.InvalidInput(core.ModuleStore, "store.backend is not configured")
	}
	defer kv.Close()

	stats, err := m.Publish(ctx, kv, opts.k)
	if err != nil {
		return err
	}
	if opts.asJSON {
		return writeJSON(out, stats)
	}
	for _, s := range stats {
		fmt.Fprintf(out, "%-14s items=%d entries=%d store=%s\n", s.Matrix, s.Items, s.Entries, kv.Name())
	}
	return nil
}

func runMetrics(opts options, out io.Writer) error {
	logging.Init(logging.Config{Level: opts.logLevel})
	recs := splitIDs(opts.recs)
	actual := splitIDs(opts.actual)
	k := opts.k
	if k <= 0 {
		k = core.DefaultTopK
	}
	r := evaluation.Evaluate(recs, actual, k)
	if opts.asJSON {
		return writeJSON(out, r)
	}
	fmt.Fprintln(out, r)
	return nil
}

func splitIDs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printResult(out io.Writer, title string, res core.Result, comps []hybrid.Components) {
	if !res.Found() {
		fmt.Fprintf(out, "%s: item not found in %s\n", title, strings.Join(res.Missing, ", "))
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for i, it := range res.Items {
		if comps != nil {
			fmt.Fprintf(out, "%3d. %-12s %.4f  (collaborative=%.4f content=%.4f)\n",
				i+1, it.ID, it.Score, comps[i].Collaborative, comps[i].Content)
			continue
		}
		fmt.Fprintf(out, "%3d. %-12s %.4f\n", i+1, it.ID, it.Score)
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
