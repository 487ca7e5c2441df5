package tool

const ddgFixture = `<!DOCTYPE html>
<html><body>
<div class="results">
  <div class="result results_links results_links_deep web-result">
    <div class="links_main">
      <h2 class="result__title">
        <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.ebay.com%2Fhelp%2Freturns&amp;rut=abc">eBay <b>Return</b> Policy</a>
      </h2>
      <a class="result__snippet" href="#">Most sellers accept returns within 30 days.</a>
    </div>
  </div>
  <div class="result results_links results_links_deep web-result">
    <div class="links_main">
      <h2 class="result__title">
        <a class="result__a" href="https://example.com/money-back">Money Back Guarantee</a>
      </h2>
      <a class="result__snippet" href="#">Get the item you ordered or your money back.</a>
    </div>
  </div>
  <div class="result results_links results_links_deep web-result">
    <div class="links_main">
      <h2 class="result__title">
        <a class="result__a" href="https://example.com/third">Third</a>
      </h2>
    </div>
  </div>
</div>
</body></html>`
